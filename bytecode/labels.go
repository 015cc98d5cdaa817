package bytecode

import "github.com/deepnoodle-ai/hbc/errz"

// DetectLabels assigns label ids to every jump target of the function and
// links each jump to its target's label.
//
// Ids start at 1 and are handed out in the order jumps appear in the
// instruction stream. A target reached by several jumps keeps the id it
// was first given. A jump whose target is not an instruction boundary
// fails the whole pass and leaves no labels behind.
//
// The pass runs once per function. Later calls return the first outcome
// without touching the instructions, so concurrent callers may read Label
// and TargetLabel as soon as DetectLabels returns nil.
func (f *Function) DetectLabels() error {
	instructions, err := f.Instructions()
	if err != nil {
		return err
	}
	f.labelOnce.Do(func() {
		f.labelCount, f.labelErr = assignLabels(f, instructions)
		if f.labelErr != nil {
			clearLabels(instructions)
			f.labelCount = 0
			return
		}
		f.labeled.Store(true)
	})
	return f.labelErr
}

// Labeled reports whether the label pass has run and succeeded.
func (f *Function) Labeled() bool {
	return f.labeled.Load()
}

func assignLabels(f *Function, instructions []*Instruction) (int, error) {
	next := 1
	for _, ins := range instructions {
		target, ok := ins.JumpTarget()
		if !ok {
			continue
		}
		dst, ok := f.byOffset[target]
		if !ok {
			return 0, errz.Consistency(errz.ErrNoInstruction, "%s at %d targets offset %d", ins.Name(), ins.Offset, target).
				WithRegion(RegionBytecode).WithFunction(f.id)
		}
		if dst.Label == 0 {
			dst.Label = next
			next++
		}
		ins.TargetLabel = dst.Label
	}
	return next - 1, nil
}

func clearLabels(instructions []*Instruction) {
	for _, ins := range instructions {
		ins.Label = 0
		ins.TargetLabel = 0
	}
}
