package css

// Node 是可出现在顶层或 @media 块内的节点。
// The set is closed: only the types in this package implement it.
type Node interface {
	// Kind returns the parser type tag of the node.
	Kind() string
	node()
}

// Stylesheet 表示完整的样式表。
type Stylesheet struct {
	Rules []Node
}

// Charset 对应 "@charset" 语句。
type Charset struct {
	Charset string
}

// Property 是一条 name: value 声明。
type Property struct {
	Name  string
	Value string
}

// Rule 是普通选择器规则，Selectors 已用 ", " 连接。
type Rule struct {
	Selectors  string
	Properties []Property
}

// KeyFrame 是 @keyframes 内的单个帧块，Values 已用 ", " 连接。
type KeyFrame struct {
	Values     string
	Properties []Property
}

// KeyFrames 对应 "@<vendor>keyframes <name>" 块。
type KeyFrames struct {
	Vendor    string
	Name      string
	KeyFrames []KeyFrame
}

// MediaQuery 对应 "@media" 块。
type MediaQuery struct {
	Media string
	Rules []Node
}

func (Charset) Kind() string    { return "charset" }
func (Rule) Kind() string       { return "rule" }
func (KeyFrames) Kind() string  { return "keyframes" }
func (MediaQuery) Kind() string { return "media" }

func (Charset) node()    {}
func (Rule) node()       {}
func (KeyFrames) node()  {}
func (MediaQuery) node() {}
