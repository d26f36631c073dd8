// Package pose enforces mutually exclusive part groups: within each
// group one member crossfades toward full opacity while the rest fade
// out, so alternate sprites swap smoothly instead of popping.
package pose

import (
	"go.uber.org/zap"

	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
)

// FadeSpeed is the opacity change rate in units per second.
const FadeSpeed = 5.0

type member struct {
	partIndex int // -1 when the part id is unknown to the rig
	linkIdx   []int
}

// Manager owns the crossfade state of every pose group of one model.
type Manager struct {
	groups [][]member
}

// NewManager resolves part ids against the rig's part index map. Parts
// the rig does not know are kept as inert members so group ordering is
// preserved.
func NewManager(groups []formats.PoseGroup, partIndex map[string]int) *Manager {
	m := &Manager{}
	for _, g := range groups {
		var resolved []member
		for _, part := range g {
			mb := member{partIndex: -1}
			if idx, ok := partIndex[part.ID]; ok {
				mb.partIndex = idx
			} else {
				logger.Debug("pose part not found in model", zap.String("part", part.ID))
			}
			for _, link := range part.LinkIDs {
				if idx, ok := partIndex[link]; ok {
					mb.linkIdx = append(mb.linkIdx, idx)
				}
			}
			resolved = append(resolved, mb)
		}
		m.groups = append(m.groups, resolved)
	}
	return m
}

// Init snaps each group to its initial state: first member fully
// visible, the rest hidden. The only instantaneous change the manager
// ever makes.
func (m *Manager) Init(opacities []float32) {
	for _, group := range m.groups {
		for i, mb := range group {
			if mb.partIndex < 0 || mb.partIndex >= len(opacities) {
				continue
			}
			if i == 0 {
				opacities[mb.partIndex] = 1
			} else {
				opacities[mb.partIndex] = 0
			}
		}
	}
}

// Update advances every group's crossfade by dt. The member with the
// highest current opacity is the dominant one; it climbs toward 1 while
// the others sink toward 0, linked parts mirroring their primary.
func (m *Manager) Update(dt float32, opacities []float32) {
	for _, group := range m.groups {
		dominant := 0
		maxOpacity := float32(0)
		for i, mb := range group {
			if mb.partIndex < 0 || mb.partIndex >= len(opacities) {
				continue
			}
			if op := opacities[mb.partIndex]; op > maxOpacity {
				maxOpacity = op
				dominant = i
			}
		}

		for i, mb := range group {
			if mb.partIndex < 0 || mb.partIndex >= len(opacities) {
				continue
			}
			op := opacities[mb.partIndex]
			if i == dominant {
				op += dt * FadeSpeed
				if op > 1 {
					op = 1
				}
			} else {
				op -= dt * FadeSpeed
				if op < 0 {
					op = 0
				}
			}
			opacities[mb.partIndex] = op

			for _, link := range mb.linkIdx {
				if link >= 0 && link < len(opacities) {
					opacities[link] = op
				}
			}
		}
	}
}

// GroupCount returns the number of pose groups under management.
func (m *Manager) GroupCount() int {
	return len(m.groups)
}
