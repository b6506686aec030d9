// Package dql implements the delta query language: boolean expressions over
// delta kind, cell, and author that compile to filter combinators.
//
//	KIND(fracture) & CELL(3,-2,0)
//	AUTHOR("smith") | AUTHOR("jones")
//	!KIND(surface_tile) & (CELL(0,0) | CELL(0,1))
package dql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/rotisserie/eris"

	"pkg.world.dev/terra/filter"
	"pkg.world.dev/terra/types"
)

type dqlOperator int

const (
	opAnd dqlOperator = iota
	opOr
)

var operatorMap = map[string]dqlOperator{"&": opAnd, "|": opOr}

// Capture tells the parser library how to transform a parsed string token
// into the operator type.
func (o *dqlOperator) Capture(s []string) error {
	if len(s) == 0 {
		return eris.New("invalid operator")
	}
	operator, ok := operatorMap[s[0]]
	if !ok {
		return eris.New("invalid operator")
	}
	*o = operator
	return nil
}

type dqlKindName struct {
	Name string `@Ident`
}

type dqlAll struct{}

func (a *dqlAll) Capture(values []string) error {
	if values[0] == "ALL" && values[1] == "(" && values[2] == ")" {
		*a = dqlAll{}
	}
	return nil
}

type dqlNot struct {
	SubExpression *dqlValue `"!" @@`
}

type dqlKind struct {
	Kinds []*dqlKindName `"KIND" "(" (@@ ",")* @@ ")"`
}

type dqlCell struct {
	X   int `"CELL" "(" @("-"? Int)`
	Y   int `"," @("-"? Int)`
	LOD int `("," @Int)? ")"`
}

type dqlAuthor struct {
	IDs []string `"AUTHOR" "(" (@String ",")* @String ")"`
}

type dqlValue struct {
	All           *dqlAll    `@("ALL" "(" ")")`
	Kind          *dqlKind   `| @@`
	Cell          *dqlCell   `| @@`
	Author        *dqlAuthor `| @@`
	Not           *dqlNot    `| @@`
	Subexpression *dqlTerm   `| "(" @@ ")"`
}

type dqlFactor struct {
	Base *dqlValue `@@`
}

type dqlOpFactor struct {
	Operator dqlOperator `@("&" | "|")`
	Factor   *dqlFactor  `@@`
}

type dqlTerm struct {
	Left  *dqlFactor     `@@`
	Right []*dqlOpFactor `@@*`
}

// Display

func (o dqlOperator) String() string {
	switch o {
	case opAnd:
		return "&"
	case opOr:
		return "|"
	}
	panic("unsupported operator")
}

func (a *dqlAll) String() string {
	return "ALL()"
}

func (k *dqlKind) String() string {
	parameters := ""
	for i, kind := range k.Kinds {
		parameters += kind.Name
		if i < len(k.Kinds)-1 {
			parameters += ", "
		}
	}
	return "KIND(" + parameters + ")"
}

func (c *dqlCell) String() string {
	return fmt.Sprintf("CELL(%d,%d,%d)", c.X, c.Y, c.LOD)
}

func (a *dqlAuthor) String() string {
	parameters := ""
	for i, id := range a.IDs {
		parameters += fmt.Sprintf("%q", id)
		if i < len(a.IDs)-1 {
			parameters += ", "
		}
	}
	return "AUTHOR(" + parameters + ")"
}

func (v *dqlValue) String() string {
	//nolint: gocritic,nestif // one branch per ast variant reads fine here.
	if v.Kind != nil {
		return v.Kind.String()
	} else if v.Cell != nil {
		return v.Cell.String()
	} else if v.Author != nil {
		return v.Author.String()
	} else if v.All != nil {
		return v.All.String()
	} else if v.Not != nil {
		return "!(" + v.Not.SubExpression.String() + ")"
	} else if v.Subexpression != nil {
		return "(" + v.Subexpression.String() + ")"
	} else {
		panic("logic error displaying DQL ast. Check the code in dql.go")
	}
}

func (f *dqlFactor) String() string {
	out := f.Base.String()
	return out
}

func (o *dqlOpFactor) String() string {
	return fmt.Sprintf("%s %s", o.Operator, o.Factor)
}

func (t *dqlTerm) String() string {
	out := []string{t.Left.String()}
	for _, r := range t.Right {
		out = append(out, r.String())
	}
	return strings.Join(out, " ")
}

var internalDQLParser = participle.MustBuild[dqlTerm](participle.Unquote("String"))

func valueToDeltaFilter(value *dqlValue) (filter.DeltaFilter, error) {
	if value.Not != nil { //nolint:gocritic,nestif // its fine.
		resultFilter, err := valueToDeltaFilter(value.Not.SubExpression)
		if err != nil {
			return nil, err
		}
		return filter.Not(resultFilter), nil
	} else if value.Kind != nil {
		if len(value.Kind.Kinds) == 0 {
			return nil, eris.New("KIND cannot have zero parameters")
		}
		kinds := make([]types.Kind, 0, len(value.Kind.Kinds))
		for _, kindName := range value.Kind.Kinds {
			kind := types.Kind(kindName.Name)
			if err := kind.Validate(); err != nil {
				return nil, eris.Wrap(err, "")
			}
			kinds = append(kinds, kind)
		}
		return filter.Kind(kinds...), nil
	} else if value.Cell != nil {
		cell := types.CellKey{
			X:   int32(value.Cell.X),
			Y:   int32(value.Cell.Y),
			LOD: int32(value.Cell.LOD),
		}
		return filter.Cell(cell), nil
	} else if value.Author != nil {
		if len(value.Author.IDs) == 0 {
			return nil, eris.New("AUTHOR cannot have zero parameters")
		}
		return filter.Author(value.Author.IDs...), nil
	} else if value.All != nil {
		return filter.All(), nil
	} else if value.Subexpression != nil {
		return termToDeltaFilter(value.Subexpression)
	} else {
		return nil, eris.New("unknown error during conversion from DQL AST to DeltaFilter")
	}
}

func factorToDeltaFilter(factor *dqlFactor) (filter.DeltaFilter, error) {
	return valueToDeltaFilter(factor.Base)
}

func opFactorToDeltaFilter(opFactor *dqlOpFactor) (*dqlOperator, filter.DeltaFilter, error) {
	resultFilter, err := factorToDeltaFilter(opFactor.Factor)
	if err != nil {
		return nil, nil, err
	}
	return &opFactor.Operator, resultFilter, nil
}

func termToDeltaFilter(term *dqlTerm) (filter.DeltaFilter, error) {
	if term.Left == nil {
		return nil, eris.New("not enough values in expression")
	}
	acc, err := factorToDeltaFilter(term.Left)
	if err != nil {
		return nil, err
	}
	for _, opFactor := range term.Right {
		operator, resultFilter, err := opFactorToDeltaFilter(opFactor)
		if err != nil {
			return nil, err
		}
		switch *operator {
		case opAnd:
			acc = filter.And(acc, resultFilter)
		case opOr:
			acc = filter.Or(acc, resultFilter)
		default:
			return nil, eris.New("invalid operator")
		}
	}
	return acc, nil
}

// Parse compiles a DQL expression into a delta filter.
func Parse(dqlText string) (filter.DeltaFilter, error) {
	term, err := internalDQLParser.ParseString("", dqlText)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	resultFilter, err := termToDeltaFilter(term)
	if err != nil {
		return nil, err
	}
	return resultFilter, nil
}

// QueryRequest is the wire shape of a delta query.
type QueryRequest struct {
	DQL string `json:"dql"`
}
