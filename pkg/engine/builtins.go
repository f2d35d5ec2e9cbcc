package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/grid"
	"github.com/chazu/strut/pkg/snap"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms strut Lisp source code before passing it to
// zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     Signed direction keywords such as :+x and :-z are keywords too.
//     This avoids registering keyword symbols as globals, which would
//     conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: auto-rotate -> auto_rotate
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. ; line comments become // comments.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			start := i + 1
			if (b[start] == '+' || b[start] == '-') && start+1 < len(b) && isLetter(b[start+1]) {
				start++
			}
			if isLetter(b[start]) {
				j := start
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only a hyphen between identifier characters is kebab-case; anything
		// else is the minus operator or a negative number.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpCell wraps a grid.Cell.
type sexpCell struct {
	cell grid.Cell
}

func (c *sexpCell) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(cell %d %d %d)", c.cell.X, c.cell.Y, c.cell.Z)
}
func (c *sexpCell) Type() *zygo.RegisteredType { return nil }

// sexpRotation wraps a grid.Rotation. It prints in the turn form it can be
// rebuilt from.
type sexpRotation struct {
	rot grid.Rotation
}

func (r *sexpRotation) SexpString(ps *zygo.PrintState) string {
	t := r.rot.Turns()
	return fmt.Sprintf("(rot %d %d %d)", t.X, t.Y, t.Z)
}
func (r *sexpRotation) Type() *zygo.RegisteredType { return nil }

// sexpInstance references a placed part so scripts can remove it later.
type sexpInstance struct {
	id   assembly.InstanceID
	typ  catalog.TypeID
	cell grid.Cell
}

func (n *sexpInstance) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(instance %s %q %s)", n.id, n.typ, n.cell)
}
func (n *sexpInstance) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// keyword directly followed by another keyword is taken as its value, so
// (place "rod" :orient :-z) works.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toTypeID(s zygo.Sexp) (catalog.TypeID, error) {
	name, err := toString(s)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(name, kwPrefix) {
		return "", fmt.Errorf("expected part type string, got keyword :%s", name[len(kwPrefix):])
	}
	return catalog.TypeID(name), nil
}

// toAxis converts a keyword or string to a grid.Axis.
func toAxis(s zygo.Sexp) (grid.Axis, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	return grid.ParseAxis(name)
}

// toDirection converts a keyword such as :+x or :-z to a grid.Direction.
func toDirection(s zygo.Sexp) (grid.Direction, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected direction keyword (:+x, :-y, ...): %w", err)
	}
	return grid.ParseDirection(name)
}

func toDirections(s zygo.Sexp) ([]grid.Direction, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]grid.Direction, 0, len(items))
	for i, item := range items {
		d, err := toDirection(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func toCell(s zygo.Sexp) (grid.Cell, error) {
	if c, ok := s.(*sexpCell); ok {
		return c.cell, nil
	}
	return grid.Cell{}, fmt.Errorf("expected cell, got %T (%s)", s, s.SexpString(nil))
}

func toRotation(s zygo.Sexp) (grid.Rotation, error) {
	if r, ok := s.(*sexpRotation); ok {
		return r.rot, nil
	}
	return 0, fmt.Errorf("expected rotation, got %T (%s)", s, s.SexpString(nil))
}

func toInstance(s zygo.Sexp) (assembly.InstanceID, error) {
	switch v := s.(type) {
	case *sexpInstance:
		return v.id, nil
	case *zygo.SexpInt:
		return assembly.InstanceID(v.Val), nil
	}
	return 0, fmt.Errorf("expected instance reference, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all strut DSL builtins into a zygomys
// environment. Definitions go into the assembly's catalog and placements
// into the assembly itself.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, a *assembly.Assembly, res *Result) {
	cat := a.Catalog()

	// -----------------------------------------------------------------------
	// (defsupport "rail-3" :axis :y :length 3 :name "Rail" :free-axis true)
	// -----------------------------------------------------------------------
	env.AddFunction("defsupport", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("defsupport requires a type id")
		}
		id, err := toTypeID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsupport: id: %w", err)
		}
		def := catalog.Support{ID: id, Name: string(id), Axis: grid.AxisY, Length: 1}

		if v, ok := pa.kw["axis"]; ok {
			ax, err := toAxis(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defsupport: axis: %w", err)
			}
			def.Axis = ax
		}
		if v, ok := pa.kw["length"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defsupport: length: %w", err)
			}
			def.Length = n
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defsupport: name: %w", err)
			}
			def.Name = s
		}
		if v, ok := pa.kw["free-axis"]; ok {
			free, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defsupport: free-axis: %w", err)
			}
			def.FreeAxis = free
		}

		if err := cat.Register(def); err != nil {
			return zygo.SexpNull, fmt.Errorf("defsupport: %w", err)
		}
		res.Defined = append(res.Defined, id)
		return &zygo.SexpStr{S: string(id)}, nil
	})

	// -----------------------------------------------------------------------
	// (defconnector "elbow" :arms (list :+z :+x) :name "Elbow")
	// -----------------------------------------------------------------------
	env.AddFunction("defconnector", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("defconnector requires a type id")
		}
		id, err := toTypeID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defconnector: id: %w", err)
		}
		def := catalog.Connector{ID: id, Name: string(id)}

		v, ok := pa.kw["arms"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("defconnector: :arms is required")
		}
		arms, err := toDirections(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defconnector: arms: %w", err)
		}
		def.Arms = arms
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defconnector: name: %w", err)
			}
			def.Name = s
		}

		if err := cat.Register(def); err != nil {
			return zygo.SexpNull, fmt.Errorf("defconnector: %w", err)
		}
		res.Defined = append(res.Defined, id)
		return &zygo.SexpStr{S: string(id)}, nil
	})

	// -----------------------------------------------------------------------
	// (cell 1 3 0)
	// -----------------------------------------------------------------------
	env.AddFunction("cell", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("cell requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]int
		for i, arg := range args {
			n, err := toInt(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cell: %c: %w", "xyz"[i], err)
			}
			xyz[i] = n
		}
		return &sexpCell{cell: grid.Cell{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (rot 1 0 0) quarter turns about x, then y, then z
	// -----------------------------------------------------------------------
	env.AddFunction("rot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("rot requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]int
		for i, arg := range args {
			n, err := toInt(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rot: %c: %w", "xyz"[i], err)
			}
			xyz[i] = n
		}
		return &sexpRotation{rot: grid.FromTurns(grid.Turns{X: xyz[0], Y: xyz[1], Z: xyz[2]})}, nil
	})

	// -----------------------------------------------------------------------
	// (place "rail-3" :at (cell 0 0 0) :rot (rot 0 0 3) :orient :-z)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires a part type as first argument")
		}
		typeID, err := toTypeID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: type: %w", err)
		}

		var at grid.Cell
		if v, ok := pa.kw["at"]; ok {
			if at, err = toCell(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: at: %w", err)
			}
		}
		rot := grid.Identity
		if v, ok := pa.kw["rot"]; ok {
			if rot, err = toRotation(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("place: rot: %w", err)
			}
		}
		var opts []assembly.PlaceOption
		if v, ok := pa.kw["orient"]; ok {
			d, err := toDirection(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("place: orient: %w", err)
			}
			opts = append(opts, assembly.WithOrientation(d))
		}

		id, err := a.AddPart(typeID, at, rot, opts...)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		return &sexpInstance{id: id, typ: typeID, cell: at}, nil
	})

	// -----------------------------------------------------------------------
	// (attach "connector-2-elbow" :near (cell 0 3 0) :radius 2)
	// Places the part at its best snap point, auto-rotated.
	// -----------------------------------------------------------------------
	env.AddFunction("attach", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("attach requires a part type as first argument")
		}
		typeID, err := toTypeID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: type: %w", err)
		}
		v, ok := pa.kw["near"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("attach: :near is required")
		}
		near, err := toCell(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: near: %w", err)
		}
		radius := snap.DefaultRadius
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("attach: radius: %w", err)
			}
		}

		best, found, err := snap.FindBestSnap(a, typeID, near, radius)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: %w", err)
		}
		if !found {
			return zygo.SexpNull, fmt.Errorf("attach: no snap point for %s within %d of %s", typeID, radius, near)
		}
		id, err := best.Place(a)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("attach: %w", err)
		}
		return &sexpInstance{id: id, typ: typeID, cell: best.Cell}, nil
	})

	// -----------------------------------------------------------------------
	// (auto-rotate "connector-2-elbow" (list :-y :+x))
	// -----------------------------------------------------------------------
	env.AddFunction("auto_rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("auto-rotate requires a connector type and a direction list")
		}
		typeID, err := toTypeID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("auto-rotate: type: %w", err)
		}
		needed, err := toDirections(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("auto-rotate: needed: %w", err)
		}
		rot, err := snap.ComputeAutoRotation(cat, typeID, needed, grid.Identity)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("auto-rotate: %w", err)
		}
		return &sexpRotation{rot: rot}, nil
	})

	// -----------------------------------------------------------------------
	// (remove ref)
	// -----------------------------------------------------------------------
	env.AddFunction("remove", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove requires exactly 1 argument, got %d", len(args))
		}
		id, err := toInstance(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove: %w", err)
		}
		if err := a.RemovePart(id); err != nil {
			return zygo.SexpNull, fmt.Errorf("remove: %w", err)
		}
		return zygo.SexpNull, nil
	})
}
