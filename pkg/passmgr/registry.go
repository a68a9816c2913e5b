package passmgr

// ID names one of the stable pass identifiers (spec.md §4.F).
type ID string

const (
	StatementInit             ID = "StatementInit"
	BBSimplify                ID = "BBSimplify"
	Dominators                ID = "Dominators"
	PhiPlacement              ID = "PhiPlacement"
	BlockVarRename            ID = "BlockVarRename"
	StatementPropagation      ID = "StatementPropagation"
	CallDefineUpdate          ID = "CallDefineUpdate"
	CallArgumentUpdate        ID = "CallArgumentUpdate"
	CallAndPhiFix             ID = "CallAndPhiFix"
	GlobalConstReplace        ID = "GlobalConstReplace"
	SPPreservation            ID = "SPPreservation"
	PreservationAnalysis      ID = "PreservationAnalysis"
	AssignRemoval             ID = "AssignRemoval"
	StrengthReductionReversal ID = "StrengthReductionReversal"
	LocalTypeAnalysis         ID = "LocalTypeAnalysis"
	UnusedStatementRemoval    ID = "UnusedStatementRemoval"
	UnusedLocalRemoval        ID = "UnusedLocalRemoval"
	FinalParameterSearch      ID = "FinalParameterSearch"
	DuplicateArgsRemoval      ID = "DuplicateArgsRemoval"
	ParameterSymbolMap        ID = "ParameterSymbolMap"
	LocalAndParamMap          ID = "LocalAndParamMap"
	BranchAnalysis            ID = "BranchAnalysis"
)

// Pass is a pure-by-convention transformation over a procedure, returning
// whether it changed anything. Passes must be idempotent at fixpoint:
// running a pass twice in a row must return false the second time.
type Pass func(p Proc) bool

// Registry maps pass identifiers to their implementations, the data-driven
// replacement for the teacher's fixed compiled-in pipeline sequence.
type Registry struct {
	passes map[ID]Pass
	stats  *Stats
}

// NewRegistry returns a Registry with every stable pass id bound to its
// default implementation.
func NewRegistry() *Registry {
	r := &Registry{passes: make(map[ID]Pass), stats: NewStats()}
	r.Register(StatementInit, passStatementInit)
	r.Register(BBSimplify, passBBSimplify)
	r.Register(Dominators, passDominators)
	r.Register(PhiPlacement, passPhiPlacement)
	r.Register(BlockVarRename, passBlockVarRename)
	r.Register(StatementPropagation, passStatementPropagation)
	r.Register(CallDefineUpdate, passCallDefineUpdate)
	r.Register(CallArgumentUpdate, passCallArgumentUpdate)
	r.Register(CallAndPhiFix, passCallAndPhiFix)
	r.Register(GlobalConstReplace, passGlobalConstReplace)
	r.Register(SPPreservation, passSPPreservation)
	r.Register(PreservationAnalysis, passPreservationAnalysis)
	r.Register(AssignRemoval, passAssignRemoval)
	r.Register(StrengthReductionReversal, passStrengthReductionReversal)
	r.Register(LocalTypeAnalysis, passLocalTypeAnalysis)
	r.Register(UnusedStatementRemoval, passUnusedStatementRemoval)
	r.Register(UnusedLocalRemoval, passUnusedLocalRemoval)
	r.Register(FinalParameterSearch, passFinalParameterSearch)
	r.Register(DuplicateArgsRemoval, passDuplicateArgsRemoval)
	r.Register(ParameterSymbolMap, passParameterSymbolMap)
	r.Register(LocalAndParamMap, passLocalAndParamMap)
	r.Register(BranchAnalysis, passBranchAnalysis)
	return r
}

// Register binds a pass implementation to id, overwriting any existing
// binding. Exposed so driver tests can substitute fakes for passes not
// under test.
func (r *Registry) Register(id ID, pass Pass) {
	r.passes[id] = pass
}

// Run executes the pass named id against p and records the outcome in the
// registry's Stats.
func (r *Registry) Run(id ID, p Proc) bool {
	pass, ok := r.passes[id]
	if !ok {
		return false
	}
	changed := pass(p)
	r.stats.record(id, changed)
	return changed
}

// RunSequence runs each pass in ids in order, returning whether any of
// them changed the procedure.
func (r *Registry) RunSequence(ids []ID, p Proc) bool {
	changed := false
	for _, id := range ids {
		if r.Run(id, p) {
			changed = true
		}
	}
	return changed
}

// RunToFixpoint repeatedly runs ids in order until a full pass over the
// sequence changes nothing, or maxIterations is reached. It returns the
// number of iterations actually run.
func (r *Registry) RunToFixpoint(ids []ID, p Proc, maxIterations int) int {
	for i := 0; i < maxIterations; i++ {
		if !r.RunSequence(ids, p) {
			return i + 1
		}
	}
	return maxIterations
}

// Stats returns the registry's running pass statistics.
func (r *Registry) Stats() *Stats { return r.stats }

// EarlySequence is the pass order earlyDecompile runs once per procedure
// (spec.md §4.G): statement materialization, local simplification, and
// the initial SSA construction over registers only.
var EarlySequence = []ID{
	StatementInit,
	BBSimplify,
	Dominators,
	PhiPlacement,
	BlockVarRename,
}

// MiddleLoopSequence is the fixpoint loop body middleDecompile iterates
// up to driver.MaxMiddleFixpointIterations times.
var MiddleLoopSequence = []ID{
	StatementPropagation,
	CallDefineUpdate,
	CallArgumentUpdate,
	CallAndPhiFix,
	GlobalConstReplace,
	SPPreservation,
	PreservationAnalysis,
	AssignRemoval,
	StrengthReductionReversal,
}

// LateSequence is the pass order lateDecompile runs once, after the
// middle fixpoint has converged and recursion-group returns are settled.
var LateSequence = []ID{
	LocalTypeAnalysis,
	UnusedStatementRemoval,
	UnusedLocalRemoval,
	FinalParameterSearch,
	DuplicateArgsRemoval,
	ParameterSymbolMap,
	LocalAndParamMap,
	BranchAnalysis,
}
