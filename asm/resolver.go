// This file is part of flip-jump - https://github.com/Mr-Bossman/flip-jump
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"github.com/pkg/errors"

	"github.com/Mr-Bossman/flip-jump/vm"
)

// residual is a single not-yet-evaluated data word, tagged with the
// bit-address of the owning instruction, used as '$' when it is finally
// evaluated in pass 2: a FlipJump's flip and jump words share the same '$',
// the instruction's own start address.
type residual struct {
	expr *Expr
	here uint64
}

// resolver performs the two-pass address assignment of spec.md §4.4 over
// a flat, already-expanded primitive operation stream.
type resolver struct {
	w vm.WordSize

	cursor   uint64 // bit-address
	segStart uint64 // word-address of the currently open segment

	segData    []*residual // residuals collected for the currently open segment
	segments   []vm.Segment
	allData    []*residual // residuals for every closed segment, in Image.Data order

	labels map[string]uint64
}

func newResolver(w vm.WordSize) *resolver {
	return &resolver{w: w, labels: make(map[string]uint64)}
}

// Resolve runs both passes over ops and returns the assembled Image.
func (r *resolver) Resolve(ops []*Operation) (*vm.Image, error) {
	if err := r.pass1(ops); err != nil {
		return nil, err
	}
	r.closeSegment(r.cursor)

	img := vm.NewImage(r.w)
	img.Segments = r.segments
	img.Data = make([]uint64, len(r.allData))

	env := &Env{Labels: make(map[string]int64, len(r.labels))}
	for name, addr := range r.labels {
		env.Labels[name] = int64(addr)
	}
	for i, res := range r.allData {
		env.Here = int64(res.here)
		v, err := res.expr.Eval(env)
		if err != nil {
			return nil, err
		}
		img.Data[i] = uint64(v) & r.w.Mask()
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}
	return img, nil
}

// pass1 walks the operation stream once, assigning every label a concrete
// bit-address and recording every data word as a residual expression to be
// evaluated in pass 2. Segment/Reserve operands must be evaluable against
// labels and constants known so far (forward references in them are not
// supported, per this module's resolution of spec.md §4.4 — see
// DESIGN.md); FlipJump/WordFlip operand values never block progress since
// a FlipJump always occupies exactly 2w bits regardless of its value.
func (r *resolver) pass1(ops []*Operation) error {
	env := func() *Env {
		e := &Env{Labels: make(map[string]int64, len(r.labels)), Here: int64(r.cursor)}
		for k, v := range r.labels {
			e.Labels[k] = int64(v)
		}
		return e
	}

	for _, op := range ops {
		switch op.Kind {
		case OpLabel:
			if _, exists := r.labels[op.Name]; exists {
				return errors.Wrapf(ErrDuplicateLabel, "%s: %q", op.Pos, op.Name)
			}
			r.labels[op.Name] = r.cursor

		case OpSegment:
			v, err := op.Start.Eval(env())
			if err != nil {
				return errors.Wrapf(err, "%s: segment start must resolve against known labels", op.Pos)
			}
			if v < 0 {
				return errors.Wrapf(ErrExpression, "%s: segment start %d is negative", op.Pos, v)
			}
			r.closeSegment(r.cursor)
			r.segStart = uint64(v)
			r.cursor = uint64(v) * uint64(r.w)

		case OpReserve:
			v, err := op.Length.Eval(env())
			if err != nil {
				return errors.Wrapf(err, "%s: reserve length must resolve against known labels", op.Pos)
			}
			if v < 0 {
				return errors.Wrapf(ErrExpression, "%s: reserve length %d is negative", op.Pos, v)
			}
			// Reserve always closes the segment's data run: the binary
			// format represents only one trailing zero-gap per segment.
			// If more data follows, it implicitly opens a fresh segment
			// right after the gap (see DESIGN.md).
			r.closeSegment(r.cursor + uint64(v))
			r.cursor += uint64(v)
			r.segStart = r.w.WordIndex(r.cursor)

		case OpFlipJump:
			here := r.cursor
			r.segData = append(r.segData, &residual{expr: op.Flip, here: here})
			r.segData = append(r.segData, &residual{expr: op.Jump, here: here})
			r.cursor += 2 * uint64(r.w)

		default:
			return errors.Errorf("%s: unexpected primitive operation in resolver", op.Pos)
		}
	}
	return nil
}

// closeSegment finalizes the currently open segment, recording it with the
// physical length running up to endBit (a bit-address), then resets the
// per-segment data accumulator. A segment with neither data nor reserved
// length is dropped.
func (r *resolver) closeSegment(endBit uint64) {
	length := r.w.WordIndex(endBit) - r.segStart
	if length == 0 && len(r.segData) == 0 {
		return
	}
	r.segments = append(r.segments, vm.Segment{
		Start:      r.segStart,
		Length:     length,
		DataStart:  uint64(len(r.allData)),
		DataLength: uint64(len(r.segData)),
	})
	r.allData = append(r.allData, r.segData...)
	r.segData = nil
}
