package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/flowprep/pkg/config"
	"github.com/chazu/flowprep/pkg/domain"
	"github.com/chazu/flowprep/pkg/foamcase"
	"github.com/chazu/flowprep/pkg/foamdict"
	"github.com/chazu/flowprep/pkg/geometry"
	"github.com/chazu/flowprep/pkg/parallel"
	"github.com/chazu/flowprep/pkg/solid"
)

// session holds the state a single evaluation's builtins operate on.
type session struct {
	cfg   *config.Config
	cases *CaseSet
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpSolid wraps a loaded solid so it can be threaded between builtins.
type sexpSolid struct {
	s *solid.Solid
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %q :triangles %d)", s.s.Name(), s.s.TriangleCount())
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// sexpDomain wraps a computed domain spec.
type sexpDomain struct {
	spec domain.Spec
}

func (d *sexpDomain) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(domain :blocks (%d %d %d))", d.spec.Blocks[0], d.spec.Blocks[1], d.spec.Blocks[2])
}
func (d *sexpDomain) Type() *zygo.RegisteredType { return nil }

// sexpPlan wraps a refinement plan.
type sexpPlan struct {
	plan domain.Plan
}

func (p *sexpPlan) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(refinements :regions %d)", len(p.plan.Regions))
}
func (p *sexpPlan) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string. Returns the
// keyword name (without prefix) and true if it is.
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

// parseArgs separates args into keyword and positional arguments.
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

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toSolid extracts the solid from a sexpSolid.
func toSolid(s zygo.Sexp) (*solid.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.s, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// toAngleUnit extracts an angle unit from a keyword (:degrees) or plain
// string ("degrees") argument. Unknown values pass through unchanged so
// the geometry layer reports them as invalid.
func toAngleUnit(s zygo.Sexp) (geometry.AngleUnit, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected unit keyword, got %T (%s)", s, s.SexpString(nil))
	}
	name := strings.TrimPrefix(str.S, kwPrefix)
	return geometry.AngleUnit(name), nil
}

// floatArg reads an optional keyword float with a default.
func floatArg(pa kwArgs, name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the case-preparation builtins into a zygomys
// environment. The builtins operate on the provided session: transforms
// mutate loaded solids in place, and write-case records emitted case
// directories in the session's CaseSet.
//
// Source must be preprocessed with preprocessSource() first so :keyword
// tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sess *session) {

	// -----------------------------------------------------------------------
	// (load-solid "geometry/aircraft.stl")
	// -----------------------------------------------------------------------
	env.AddFunction("load_solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("load-solid requires a path argument")
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-solid: path: %w", err)
		}
		s, err := solid.Load(path)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-solid: %w", err)
		}
		return &sexpSolid{s: s}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate s :z 0 :y 5 :x 0 :units :degrees)
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}

		z, err := floatArg(pa, "z", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		y, err := floatArg(pa, "y", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		x, err := floatArg(pa, "x", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}

		unit := geometry.Degrees
		if v, ok := pa.kw["units"]; ok {
			if unit, err = toAngleUnit(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
			}
		}
		if err := s.Rotate(z, y, x, unit); err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (set-aoa s 5 :units :degrees)
	// -----------------------------------------------------------------------
	env.AddFunction("set_aoa", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("set-aoa requires a solid and an angle")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-aoa: %w", err)
		}
		angle, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("set-aoa: angle: %w", err)
		}

		unit := geometry.Degrees
		if v, ok := pa.kw["units"]; ok {
			if unit, err = toAngleUnit(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-aoa: %w", err)
			}
		}
		if err := s.SetAngleOfAttack(angle, unit); err != nil {
			return zygo.SexpNull, fmt.Errorf("set-aoa: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (translate s :x 1 :y 0 :z 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		dx, err := floatArg(pa, "x", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		dy, err := floatArg(pa, "y", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		dz, err := floatArg(pa, "z", 0)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		s.Translate(dx, dy, dz)
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (scale s :x 1 :y 1 :z 1)
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("scale requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		sx, err := floatArg(pa, "x", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		sy, err := floatArg(pa, "y", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		sz, err := floatArg(pa, "z", 1)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		if err := s.Scale(sx, sy, sz); err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (center s)
	// -----------------------------------------------------------------------
	env.AddFunction("center", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("center requires a solid argument")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("center: %w", err)
		}
		s.Center()
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (save-solid s "out.stl")
	// -----------------------------------------------------------------------
	env.AddFunction("save_solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("save-solid requires a solid and a path")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("save-solid: %w", err)
		}
		path, err := toString(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("save-solid: path: %w", err)
		}
		if err := s.Save(path); err != nil {
			return zygo.SexpNull, fmt.Errorf("save-solid: %w", err)
		}
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (bounds s) -> [xmin xmax ymin ymax zmin zmax]
	// -----------------------------------------------------------------------
	env.AddFunction("bounds", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("bounds requires a solid argument")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("bounds: %w", err)
		}
		bb := s.Bounds()
		vals := []float64{bb.Min[0], bb.Max[0], bb.Min[1], bb.Max[1], bb.Min[2], bb.Max[2]}
		arr := &zygo.SexpArray{Env: env}
		for _, v := range vals {
			arr.Val = append(arr.Val, &zygo.SexpFloat{Val: v})
		}
		return arr, nil
	})

	// -----------------------------------------------------------------------
	// (domain s :cell-size 0.25)
	// -----------------------------------------------------------------------
	env.AddFunction("domain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("domain requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("domain: %w", err)
		}
		cellSize, err := floatArg(pa, "cell_size", sess.cfg.Mesh.BaseCellSize)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("domain: %w", err)
		}
		spec, err := domain.Size(s.Bounds(), cellSize, sess.cfg.Sizing)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("domain: %w", err)
		}
		return &sexpDomain{spec: spec}, nil
	})

	// -----------------------------------------------------------------------
	// (refinements s)
	// -----------------------------------------------------------------------
	env.AddFunction("refinements", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("refinements requires a solid argument")
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("refinements: %w", err)
		}
		plan := domain.PlanRefinement(s.Bounds(), s.YMinPoint(), s.YMaxPoint(), sess.cfg.Refinement)
		return &sexpPlan{plan: plan}, nil
	})

	// -----------------------------------------------------------------------
	// (write-case s :dir "sweep/aoa_5" :template "template" :cell-size 0.25 :procs 4)
	// -----------------------------------------------------------------------
	env.AddFunction("write_case", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("write-case requires a solid as first argument")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-case: %w", err)
		}

		dirArg, ok := pa.kw["dir"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("write-case requires :dir")
		}
		dir, err := toString(dirArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-case: dir: %w", err)
		}
		tplArg, ok := pa.kw["template"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("write-case requires :template")
		}
		template, err := toString(tplArg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-case: template: %w", err)
		}

		cellSize, err := floatArg(pa, "cell_size", sess.cfg.Mesh.BaseCellSize)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-case: %w", err)
		}
		procs := sess.cfg.Parallel.Processors
		if v, ok := pa.kw["procs"]; ok {
			if procs, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("write-case: procs: %w", err)
			}
		}

		dirOut, err := writeCase(sess, s, dir, template, cellSize, procs)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("write-case: %w", err)
		}
		return &zygo.SexpStr{S: dirOut}, nil
	})
}

// writeCase runs the full case emission pipeline for one solid.
func writeCase(sess *session, s *solid.Solid, dir, template string, cellSize float64, procs int) (string, error) {
	c, err := foamcase.Setup(dir, template)
	if err != nil {
		return "", err
	}
	if err := c.InstallGeometry(s); err != nil {
		return "", err
	}

	spec, err := domain.Size(s.Bounds(), cellSize, sess.cfg.Sizing)
	if err != nil {
		return "", err
	}
	plan := domain.PlanRefinement(s.Bounds(), s.YMinPoint(), s.YMaxPoint(), sess.cfg.Refinement)

	if err := foamdict.WriteFile(c.PolyMeshPath("blockMeshDict"), foamdict.BlockMeshDict(spec)); err != nil {
		return "", err
	}
	if err := foamdict.WriteFile(c.SystemPath("snappyRefinement"), foamdict.SnappyRegions(plan)); err != nil {
		return "", err
	}
	if procs > 1 {
		d, err := parallel.Decompose(procs)
		if err != nil {
			return "", err
		}
		if err := foamdict.WriteFile(c.SystemPath("decomposeParDict"), foamdict.DecomposeParDict(d)); err != nil {
			return "", err
		}
	}

	sess.cases.Dirs = append(sess.cases.Dirs, c.Dir)
	return c.Dir, nil
}
