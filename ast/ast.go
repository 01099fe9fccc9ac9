// Package ast defines the minimal query-block AST the planner consumes and
// mutates in place. The real parser, its full grammar, and its node
// definitions are an external collaborator; this package only carries the
// shapes the planner needs to read a MATCH clause and rewrite
// FROM/WHERE/SELECT.
package ast

// TableName is a schema-qualified relational name. An empty Schema means the
// name was written unqualified and defaults to "dbo" during pattern
// construction.
type TableName struct {
	Schema string
	Name   string
}

func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Expr is any scalar expression appearing in a WHERE clause or join
// condition.
type Expr interface {
	expr()
	// String renders the expression back to SQL text for emission.
	String() string
}

// ColumnRef is a (possibly alias-qualified) column reference, e.g. `a.Name`.
type ColumnRef struct {
	Alias  string
	Column string
}

func (ColumnRef) expr() {}
func (c ColumnRef) String() string {
	if c.Alias == "" {
		return c.Column
	}
	return c.Alias + "." + c.Column
}

// Literal is a constant value rendered verbatim (already quoted if it's a
// string literal).
type Literal struct {
	Text string
}

func (Literal) expr() {}
func (l Literal) String() string { return l.Text }

// BinaryExpr is `Left Op Right`, e.g. an equality predicate or a conjunction.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

func (BinaryExpr) expr() {}
func (b BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// FuncExpr is a scalar or aggregate function call, used both for predicates
// already in the query and for emitted calls (DownSizeFunction, path message
// decoders).
type FuncExpr struct {
	Schema string
	Name   string
	Args   []Expr
}

func (FuncExpr) expr() {}
func (f FuncExpr) String() string {
	s := f.Name + "("
	if f.Schema != "" {
		s = f.Schema + "." + s
	}
	for i, a := range f.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// QualifiedFuncExpr renders with an explicit schema prefix, used for
// path-decoder UDFs (`dbo.<schema>_<table>_<name>_PathMessageDecoder`).
func QualifiedFuncExpr(schema, name string, args ...Expr) FuncExpr {
	return FuncExpr{Schema: schema, Name: name, Args: args}
}

func conjoin(a, b Expr) Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return BinaryExpr{Op: "AND", Left: a, Right: b}
}

// ProjectionItem is one SELECT-list entry.
type ProjectionItem struct {
	Expr  Expr
	Alias string
	// StarAlias is non-empty for a `alias.*` projection; when the alias names
	// a variable-length path, emit's path.* rewrite replaces the item.
	StarAlias string
}

// TableExpr is any FROM-clause subtree: a base table reference or a join.
type TableExpr interface {
	tableExpr()
}

// AliasedTableExpr is a single table bound to an alias, e.g. `Person AS p`.
type AliasedTableExpr struct {
	Table TableName
	As    string
}

func (AliasedTableExpr) tableExpr() {}

// JoinTableExpr is `Left JOIN Right ON Cond`.
type JoinTableExpr struct {
	Left, Right TableExpr
	Cond        Expr
	JoinHint    string // e.g. "INNER", "LEFT"
}

func (JoinTableExpr) tableExpr() {}

// MatchStep is one (node, edge, next-node) triple in a declared path.
type MatchStep struct {
	Node       string // exposed alias of the source node
	NodeTable  TableName
	EdgeAlias  string // empty if unnamed; constructor synthesizes one
	EdgeColumn string
	MinLength  int
	MaxLength  int // -1 means unbounded
	NextNode   string
	NextTable  TableName
	// ProjectPath is true if the surrounding SELECT references
	// EdgeAlias.*.
	ProjectPath bool
}

// MatchPathDecl is one `a-[e]->b-[f]->c` path declared in the MATCH clause.
type MatchPathDecl struct {
	Steps []MatchStep
}

// MatchClause is the graph pattern attached to one SELECT block.
type MatchClause struct {
	Paths []MatchPathDecl
}

// SelectStatement is the single query block the planner operates on.
type SelectStatement struct {
	Projection []ProjectionItem
	From       TableExpr
	Where      Expr
	Match      *MatchClause

	// ExternalAliases names aliases bound by an enclosing scope (a
	// procedural variable or outer query block) and already present in
	// From/Where before planning starts.
	ExternalAliases map[string]TableName
}

// AddWhere conjoins an additional predicate onto the WHERE clause.
func (s *SelectStatement) AddWhere(e Expr) {
	s.Where = conjoin(s.Where, e)
}

// ClearMatch removes the MATCH clause, marking the pattern consumed.
func (s *SelectStatement) ClearMatch() {
	s.Match = nil
}
