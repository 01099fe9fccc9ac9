package planner

import (
	"github.com/mostafa-java/graphview-go/ast"
	"github.com/mostafa-java/graphview-go/catalog"
)

const defaultSchema = "dbo"

func schemaOf(t ast.TableName) string {
	if t.Schema == "" {
		return defaultSchema
	}
	return t.Schema
}

// edgeBinding is what resolveEdge figured out about one (source-table,
// edge-column) pair: the concrete node table that declares the column, and
// its catalog EdgeInfo.
type edgeBinding struct {
	BoundTable ast.TableName
	Info       catalog.EdgeInfo
}

// resolveEdge finds the concrete node table behind source (resolving node
// view indirection) that declares edgeColumn. The first concrete candidate
// that declares the column wins; candidates come in ConcreteNodeTables'
// map order, so when several tables behind a view declare the column, which
// one wins is not defined.
func resolveEdge(meta *catalog.GraphMetaData, source ast.TableName, edgeColumn string) (edgeBinding, bool) {
	schema := schemaOf(source)
	for _, concrete := range meta.ConcreteNodeTables(schema, source.Name) {
		if info, ok := meta.EdgeColumn(schema, concrete, edgeColumn); ok {
			return edgeBinding{
				BoundTable: ast.TableName{Schema: schema, Name: concrete},
				Info:       info,
			}, true
		}
	}
	return edgeBinding{}, false
}

// Validate walks every (source, edge, next) triple in every declared path
// and rejects patterns that reference unknown tables, undeclared edge
// columns, or unreachable sinks.
func Validate(meta *catalog.GraphMetaData, match *ast.MatchClause) error {
	for _, path := range match.Paths {
		for _, step := range path.Steps {
			if err := validateStep(meta, step); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateStep(meta *catalog.GraphMetaData, step ast.MatchStep) error {
	if !meta.IsNodeTable(schemaOf(step.NodeTable), step.NodeTable.Name) {
		return ErrNotANodeTable.New(step.Node, step.NodeTable.String())
	}

	binding, ok := resolveEdge(meta, step.NodeTable, step.EdgeColumn)
	if !ok {
		return ErrEdgeNotDeclared.New(step.EdgeColumn, step.NodeTable.String())
	}

	if step.MinLength < 0 {
		return ErrInvalidPathLength.New(step.EdgeAlias, step.MinLength, step.MaxLength)
	}
	if step.MaxLength >= 0 && step.MinLength > step.MaxLength {
		return ErrInvalidPathLength.New(step.EdgeAlias, step.MinLength, step.MaxLength)
	}

	for _, sinkTable := range binding.Info.SinkNodes {
		if !meta.IsNodeTable(schemaOf(step.NodeTable), sinkTable) {
			return ErrSinkTableUnknown.New(step.EdgeColumn, sinkTable)
		}
	}

	if step.NextNode != "" {
		nextSchema := schemaOf(step.NextTable)
		reachable := false
		for _, concrete := range meta.ConcreteNodeTables(nextSchema, step.NextTable.Name) {
			if binding.Info.HasSink(concrete) {
				reachable = true
				break
			}
		}
		if !meta.IsNodeTable(nextSchema, step.NextTable.Name) {
			return ErrNotANodeTable.New(step.NextNode, step.NextTable.String())
		}
		if !reachable {
			return ErrSinkNotReachable.New(step.NextNode, step.NextTable.String(), step.EdgeColumn)
		}
	}

	return nil
}
