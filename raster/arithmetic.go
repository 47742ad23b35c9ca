package raster

import "fmt"

// Add returns a+b cell-wise. See combine for shape and NoData rules.
func Add(a, b *Grid) (*Grid, error) {
	return combine(a, b, func(x, y float64) float64 { return x + y })
}

// Multiply returns a×b cell-wise.
func Multiply(a, b *Grid) (*Grid, error) {
	return combine(a, b, func(x, y float64) float64 { return x * y })
}

// Scale returns g with every data cell multiplied by f.
func (g *Grid) Scale(f float64) (*Grid, error) {
	return Multiply(g, Constant(f))
}

// combine applies op cell-wise.
//
// Both non-constant operands must share a shape (ErrShapeMismatch otherwise).
// A constant operand adopts the other's shape. NoData in either operand yields
// NoData in the result; a constant operand never masks a NoData cell of the
// other. The result uses the no-data sentinel of the first non-constant operand.
func combine(a, b *Grid, op func(x, y float64) float64) (*Grid, error) {
	if a.constant && b.constant {
		return Constant(op(a.constValue, b.constValue)), nil
	}
	for _, g := range [...]*Grid{a, b} {
		if g.released {
			return nil, fmt.Errorf("%w: %s", ErrReleased, g.Name)
		}
	}
	shape := a
	if a.constant {
		shape = b
	}
	if !a.constant && !b.constant && !a.SameShape(b) {
		return nil, fmt.Errorf("%w: %s vs %s", ErrShapeMismatch, a.Name, b.Name)
	}

	out, err := shape.EmptyLike(shape.Name)
	if err != nil {
		return nil, err
	}
	for k := range out.values {
		x := a.at(k)
		y := b.at(k)
		if a.IsNoData(x) || b.IsNoData(y) {
			continue
		}
		out.values[k] = op(x, y)
	}

	return out, nil
}

// at returns the k-th row-major value, or the constant.
func (g *Grid) at(k int) float64 {
	if g.constant {
		return g.constValue
	}
	return g.values[k]
}
