package formats

// BlendMode selects how an expression parameter combines with the value
// already computed by the motion layers.
type BlendMode int

const (
	BlendAdd BlendMode = iota
	BlendMultiply
	BlendOverwrite
)

func (b BlendMode) String() string {
	switch b {
	case BlendMultiply:
		return "Multiply"
	case BlendOverwrite:
		return "Overwrite"
	default:
		return "Add"
	}
}

// ExpressionParam is one (parameter, value, blend) entry of an expression.
type ExpressionParam struct {
	ParamID string
	Value   float32
	Blend   BlendMode
}

// Expression is a parsed exp3.json file.
type Expression struct {
	Name   string
	Params []ExpressionParam
}

// ParseExpression3 parses an exp3.json file. The name comes from the
// model bundle, not the file itself. An entry without an Id is skipped;
// an unknown or missing Blend falls back to Add.
func ParseExpression3(j, name string) Expression {
	expr := Expression{Name: name}

	arr := findArrayStart(j, "Parameters", 0)
	if arr < 0 {
		return expr
	}
	for _, obj := range extractObjectArray(j, arr) {
		var ep ExpressionParam
		if p := findKey(obj, "Id", 0); p >= 0 {
			ep.ParamID = extractString(obj, p)
		}
		if ep.ParamID == "" {
			continue
		}
		if p := findKey(obj, "Value", 0); p >= 0 {
			ep.Value = readNumber(obj, p)
		}
		if p := findKey(obj, "Blend", 0); p >= 0 {
			switch extractString(obj, p) {
			case "Multiply":
				ep.Blend = BlendMultiply
			case "Overwrite":
				ep.Blend = BlendOverwrite
			default:
				ep.Blend = BlendAdd
			}
		}
		expr.Params = append(expr.Params, ep)
	}

	return expr
}
