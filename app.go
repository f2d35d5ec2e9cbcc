package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/chazu/strut/pkg/assembly"
	"github.com/chazu/strut/pkg/catalog"
	"github.com/chazu/strut/pkg/engine"
	"github.com/chazu/strut/pkg/grid"
	"github.com/chazu/strut/pkg/kernel"
	"github.com/chazu/strut/pkg/kernel/manifold"
	"github.com/chazu/strut/pkg/kernel/sdfx"
	"github.com/chazu/strut/pkg/snap"
	"github.com/chazu/strut/pkg/store"
	"github.com/chazu/strut/pkg/tessellate"
)

const (
	// DefaultSnapRadius is the search radius used when a request gives none.
	DefaultSnapRadius = snap.DefaultRadius
	// DefaultCellSize is the edge length of a grid cell in mm.
	DefaultCellSize = 20.0
	// dbPathEnv overrides Settings.DatabasePath.
	dbPathEnv = "STRUT_DB"
	// kernelEnv overrides Settings.Kernel.
	kernelEnv = "STRUT_KERNEL"
)

// Preview kernels.
const (
	KernelSdfx     = "sdfx"
	KernelManifold = "manifold"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// ghostColor is used for snap previews.
const ghostColor = "#BDC3C7"

// Settings configures an App.
type Settings struct {
	SnapRadius   int     `json:"snapRadius"`
	CellSize     float64 `json:"cellSize"`
	DatabasePath string  `json:"databasePath"`
	Kernel       string  `json:"kernel"`
}

// DefaultSettings returns the stock settings, honouring STRUT_DB.
func DefaultSettings() Settings {
	s := Settings{
		SnapRadius:   DefaultSnapRadius,
		CellSize:     DefaultCellSize,
		DatabasePath: store.DefaultPath,
		Kernel:       KernelSdfx,
	}
	if p := os.Getenv(dbPathEnv); p != "" {
		s.DatabasePath = p
	}
	if k := os.Getenv(kernelEnv); k != "" {
		s.Kernel = k
	}
	return s
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
// All bindings are safe to call concurrently.
type App struct {
	ctx      context.Context
	settings Settings
	base     *catalog.Catalog
	engine   *engine.Engine
	kernel   kernel.Kernel

	mu    sync.Mutex
	asm   *assembly.Assembly
	store *store.Store
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
	Ghost    bool      `json:"ghost"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Defined  []string        `json:"defined"`
}

// PlaceRequest asks for one part at an explicit placement. Orientation is
// only read for free-axis supports; empty means the rotated canonical axis.
type PlaceRequest struct {
	Type        string     `json:"type"`
	Cell        grid.Cell  `json:"cell"`
	Turns       grid.Turns `json:"turns"`
	Orientation string     `json:"orientation"`
}

// PlaceResult reports a placement. Error is empty on success.
type PlaceResult struct {
	ID    uint64      `json:"id"`
	Cells []grid.Cell `json:"cells"`
	Error string      `json:"error,omitempty"`
}

// SnapResult is the best snap candidate near a cursor cell, with its
// preview mesh. Found is false when nothing is in range.
type SnapResult struct {
	Found     bool            `json:"found"`
	Candidate *snap.Candidate `json:"candidate,omitempty"`
	Preview   *MeshData       `json:"preview,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// NewApp creates a new App with the built-in catalog and the sdfx kernel.
func NewApp() *App {
	return NewAppWithSettings(DefaultSettings())
}

// NewAppWithSettings creates an App with explicit settings. Zero fields
// fall back to their defaults.
func NewAppWithSettings(s Settings) *App {
	if s.SnapRadius <= 0 {
		s.SnapRadius = DefaultSnapRadius
	}
	if s.CellSize <= 0 {
		s.CellSize = DefaultCellSize
	}
	if s.DatabasePath == "" {
		s.DatabasePath = store.DefaultPath
	}
	k, name := newKernel(s.Kernel)
	s.Kernel = name
	base := catalog.Builtin()
	return &App{
		settings: s,
		base:     base,
		engine:   engine.NewEngine(base),
		kernel:   k,
		asm:      assembly.New(base.Clone()),
	}
}

// newKernel builds the named preview kernel, falling back to sdfx when the
// name is unknown or the kernel is not compiled in. It returns the kernel
// actually used.
func newKernel(name string) (kernel.Kernel, string) {
	switch name {
	case KernelManifold:
		k, err := manifold.New()
		if err == nil {
			return k, KernelManifold
		}
		log.Printf("Kernel %s unavailable, using %s: %v", name, KernelSdfx, err)
	case KernelSdfx, "":
	default:
		log.Printf("Unknown kernel %q, using %s", name, KernelSdfx)
	}
	return sdfx.New(), KernelSdfx
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Printf("Close store error: %v", err)
		}
		a.store = nil
	}
}

// Settings returns the active settings.
func (a *App) Settings() Settings {
	return a.settings
}

// Catalog lists the part types of the current assembly.
func (a *App) Catalog() []catalog.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []catalog.Record{}
	for _, def := range a.asm.Catalog().List() {
		out = append(out, catalog.ToRecord(def))
	}
	return out
}

// Place adds one part.
func (a *App) Place(req PlaceRequest) PlaceResult {
	result := PlaceResult{Cells: []grid.Cell{}}

	var opts []assembly.PlaceOption
	if req.Orientation != "" {
		d, err := grid.ParseDirection(req.Orientation)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		opts = append(opts, assembly.WithOrientation(d))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id, err := a.asm.AddPart(catalog.TypeID(req.Type), req.Cell, grid.FromTurns(req.Turns), opts...)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	inst, _ := a.asm.Get(id)
	result.ID = uint64(id)
	result.Cells = append(result.Cells, inst.Cells()...)
	return result
}

// Remove deletes a placed part by id.
func (a *App) Remove(id uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.asm.RemovePart(assembly.InstanceID(id))
}

// Clear removes every part, keeping the catalog.
func (a *App) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.asm.Clear()
}

// BestSnap finds the best placement of typeID near (x, y, z). A negative
// radius selects the configured default.
func (a *App) BestSnap(typeID string, x, y, z, radius int) SnapResult {
	if radius < 0 {
		radius = a.settings.SnapRadius
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	best, ok, err := snap.FindBestSnap(a.asm, catalog.TypeID(typeID), grid.Cell{X: x, Y: y, Z: z}, radius)
	if err != nil {
		return SnapResult{Error: err.Error()}
	}
	if !ok {
		return SnapResult{}
	}
	result := SnapResult{Found: true, Candidate: &best}

	def, err := a.asm.Catalog().Lookup(best.Type)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	m, err := tessellate.Candidate(def, best, a.kernel, a.settings.CellSize)
	if err != nil {
		log.Printf("Preview error: %v", err)
		result.Error = "preview failed: " + err.Error()
		return result
	}
	preview := toMeshData(m, ghostColor)
	result.Preview = &preview
	return result
}

// Evaluate runs a script and, on success, replaces the current assembly
// with the one it built.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
		Defined:  []string{},
	}

	res, evalErrs, err := a.engine.Evaluate(source)
	if errors.Is(err, engine.ErrSuperseded) {
		return result
	}
	if err != nil {
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, id := range res.Defined {
		result.Defined = append(result.Defined, string(id))
	}
	for _, err := range res.Assembly.Verify() {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: err.Error()})
	}

	meshes, err := tessellate.Assembly(res.Assembly, a.kernel, a.settings.CellSize)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	result.Meshes = colorMeshes(meshes)

	a.mu.Lock()
	a.asm = res.Assembly
	a.mu.Unlock()
	return result
}

// Meshes tessellates the current assembly.
func (a *App) Meshes() ([]MeshData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	meshes, err := tessellate.Assembly(a.asm, a.kernel, a.settings.CellSize)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		return []MeshData{}, err
	}
	return colorMeshes(meshes), nil
}

// BOM counts the placed parts per type, ordered by type id.
func (a *App) BOM() []assembly.BOMLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.asm.BillOfMaterials()
}

// Save stores the current assembly as a named project.
func (a *App) Save(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.openStore()
	if err != nil {
		return err
	}
	if err := s.Save(a.context(), name, a.asm); err != nil {
		log.Printf("Save error: %v", err)
		return err
	}
	return nil
}

// Load replaces the current assembly with a stored project.
func (a *App) Load(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.openStore()
	if err != nil {
		return err
	}
	asm, err := s.Load(a.context(), name, a.base)
	if err != nil {
		log.Printf("Load error: %v", err)
		return err
	}
	a.asm = asm
	return nil
}

// Projects lists the stored projects.
func (a *App) Projects() ([]store.Project, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, err := a.openStore()
	if err != nil {
		return []store.Project{}, err
	}
	return s.List(a.context())
}

// openStore opens the database on first use. Callers hold a.mu.
func (a *App) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s, err := store.Open(a.settings.DatabasePath)
	if err != nil {
		log.Printf("Open store error: %v", err)
		return nil, fmt.Errorf("open project store: %w", err)
	}
	a.store = s
	return s, nil
}

func (a *App) context() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

func colorMeshes(meshes []*kernel.Mesh) []MeshData {
	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, toMeshData(m, colorPalette[i%len(colorPalette)]))
	}
	return out
}

func toMeshData(m *kernel.Mesh, color string) MeshData {
	return MeshData{
		Vertices: m.Vertices,
		Normals:  m.Normals,
		Indices:  m.Indices,
		PartName: m.PartName,
		Color:    color,
		Ghost:    m.Ghost,
	}
}
