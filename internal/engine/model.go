package engine

import (
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/gameswu/nyadeskpet-live2d/internal/assets"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/animation"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/physics"
	"github.com/gameswu/nyadeskpet-live2d/internal/engine/pose"
	"github.com/gameswu/nyadeskpet-live2d/internal/logger"
	"github.com/gameswu/nyadeskpet-live2d/pkg/formats"
	"github.com/gameswu/nyadeskpet-live2d/pkg/live2d"
)

// Model is one loaded character: the rig plus everything derived from
// the bundle's sidecar files.
type Model struct {
	bundle  formats.ModelBundle
	baseDir string
	loader  assets.Loader

	rig    live2d.Rig
	params *live2d.ParamTable

	anim    *animation.State
	phys    *physics.Simulator
	poseMgr *pose.Manager

	// Parsed motions cached by file path, loaded on first use.
	motionCache map[string]formats.Motion

	textureCount int
}

// loadModel reads and wires a complete model bundle. The moc and the
// model3.json must parse; every sidecar degrades to absent on failure.
func loadModel(core live2d.Loader, loader assets.Loader, modelPath string) (*Model, error) {
	raw, err := loader.Read(modelPath)
	if err != nil {
		return nil, fmt.Errorf("reading model json: %w", err)
	}

	m := &Model{
		bundle:      formats.ParseModel3(string(raw)),
		baseDir:     path.Dir(modelPath),
		loader:      loader,
		anim:        animation.NewState(),
		motionCache: make(map[string]formats.Motion),
	}
	if m.baseDir == "." {
		m.baseDir = ""
	}

	if m.bundle.MocPath == "" {
		return nil, fmt.Errorf("model json names no moc file")
	}
	mocData, err := loader.Read(m.join(m.bundle.MocPath))
	if err != nil {
		return nil, fmt.Errorf("reading moc: %w", err)
	}
	m.rig, err = core.LoadRig(mocData)
	if err != nil {
		return nil, fmt.Errorf("loading rig: %w", err)
	}
	m.params = live2d.NewParamTable(m.rig)

	m.loadIdle()
	m.loadExpressions()
	m.loadPhysics()
	m.loadPose()

	m.textureCount = len(m.bundle.TexturePaths)
	return m, nil
}

func (m *Model) join(p string) string {
	if m.baseDir == "" {
		return p
	}
	return path.Join(m.baseDir, p)
}

func (m *Model) loadIdle() {
	if m.bundle.IdleMotionPath == "" {
		return
	}
	raw, err := m.loader.Read(m.join(m.bundle.IdleMotionPath))
	if err != nil {
		logger.Warn("idle motion unavailable",
			zap.String("path", m.bundle.IdleMotionPath), zap.Error(err))
		return
	}
	motion := formats.ParseMotion3(string(raw))
	if len(motion.Curves) == 0 {
		logger.Warn("idle motion has no curves", zap.String("path", m.bundle.IdleMotionPath))
		return
	}
	m.anim.SetIdle(motion)
}

func (m *Model) loadExpressions() {
	if len(m.bundle.Expressions) == 0 {
		return
	}
	exprs := make(map[string]formats.Expression, len(m.bundle.Expressions))
	for _, ref := range m.bundle.Expressions {
		raw, err := m.loader.Read(m.join(ref.File))
		if err != nil {
			logger.Warn("expression unavailable",
				zap.String("name", ref.Name), zap.Error(err))
			continue
		}
		exprs[ref.Name] = formats.ParseExpression3(string(raw), ref.Name)
	}
	m.anim.SetExpressions(exprs)
	logger.Info("expressions loaded", zap.Int("count", len(exprs)))
}

func (m *Model) loadPhysics() {
	if m.bundle.PhysicsPath == "" {
		return
	}
	raw, err := m.loader.Read(m.join(m.bundle.PhysicsPath))
	if err != nil {
		logger.Warn("physics unavailable", zap.Error(err))
		return
	}
	rig := formats.ParsePhysics3(string(raw))
	if len(rig.SubRigs) == 0 {
		return
	}
	m.phys = physics.NewSimulator(rig, m.params)
	logger.Info("physics loaded", zap.Int("subRigs", len(rig.SubRigs)))
}

func (m *Model) loadPose() {
	if m.bundle.PosePath == "" {
		return
	}
	raw, err := m.loader.Read(m.join(m.bundle.PosePath))
	if err != nil {
		logger.Warn("pose unavailable", zap.Error(err))
		return
	}
	groups := formats.ParsePose3(string(raw))
	if len(groups) == 0 {
		return
	}

	partIndex := make(map[string]int)
	for i, id := range m.rig.PartIDs() {
		partIndex[id] = i
	}
	m.poseMgr = pose.NewManager(groups, partIndex)
	m.poseMgr.Init(m.rig.PartOpacities())
	logger.Info("pose loaded", zap.Int("groups", m.poseMgr.GroupCount()))
}

// motion returns the parsed motion for a group entry, reading the file
// on first use. Returns false if the entry does not exist or the file
// cannot be read or holds no curves.
func (m *Model) motion(group string, index int) (formats.Motion, bool) {
	files, ok := m.bundle.MotionGroups[group]
	if !ok {
		logger.Debug("motion group not found", zap.String("group", group))
		return formats.Motion{}, false
	}
	if index < 0 || index >= len(files) {
		logger.Debug("motion index out of range",
			zap.String("group", group), zap.Int("index", index), zap.Int("size", len(files)))
		return formats.Motion{}, false
	}

	file := m.join(files[index])
	if cached, ok := m.motionCache[file]; ok {
		return cached, true
	}

	raw, err := m.loader.Read(file)
	if err != nil {
		logger.Error("cannot read motion file", zap.String("path", file), zap.Error(err))
		return formats.Motion{}, false
	}
	motion := formats.ParseMotion3(string(raw))
	if len(motion.Curves) == 0 {
		logger.Debug("motion has no curves", zap.String("path", file))
		return formats.Motion{}, false
	}

	m.motionCache[file] = motion
	return motion, true
}

// update advances the whole per-frame pipeline and re-evaluates the rig.
func (m *Model) update(dt float32) {
	m.anim.Apply(dt, m.params)
	if m.phys != nil {
		m.phys.Update(dt, m.params)
	}
	m.anim.ApplyOverrides(m.params)
	if m.poseMgr != nil {
		m.poseMgr.Update(dt, m.rig.PartOpacities())
	}
	m.rig.Update()
}

// release frees the rig. GPU textures are owned by the renderer.
func (m *Model) release() {
	if m.rig != nil {
		m.rig.Release()
		m.rig = nil
	}
}
