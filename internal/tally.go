package internal

import (
	"fmt"

	"github.com/chrisconley/number/internal/infra"
	"github.com/chrisconley/number/specs"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tally implements specs.Tally.
// Converts specs to domain objects, transforms, and converts back to specs.
func Tally(spec specs.TallySpec) (specs.TallyResultSpec, error) {
	return NewTallier().Tally(spec)
}

// Tallier runs tallies, logging each step and publishing derivations on an
// optional bus.
type Tallier struct {
	logger *zap.Logger
	bus    *infra.Bus
}

type TallierOption func(*Tallier)

func WithLogger(logger *zap.Logger) TallierOption {
	return func(t *Tallier) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func WithBus(bus *infra.Bus) TallierOption {
	return func(t *Tallier) {
		t.bus = bus
	}
}

func NewTallier(opts ...TallierOption) *Tallier {
	t := &Tallier{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tallier) Tally(spec specs.TallySpec) (specs.TallyResultSpec, error) {
	// Convert spec to domain object
	config, err := NewTallyConfig(spec)
	if err != nil {
		t.logger.Warn("rejected tally spec", zap.Error(err))
		return specs.TallyResultSpec{}, fmt.Errorf("invalid config: %w", err)
	}

	// Transform using domain objects
	id := uuid.New()
	result, err := t.tally(id, config)
	if err != nil {
		t.logger.Warn("tally failed", zap.String("tally_id", id.String()), zap.Error(err))
		return specs.TallyResultSpec{}, err
	}

	// Convert domain objects back to spec
	lineage := result.Lineage()
	rendered := make([]string, len(lineage))
	for i, n := range lineage {
		s, err := n.ToString(config.Scale())
		if err != nil {
			return specs.TallyResultSpec{}, fmt.Errorf("render lineage: %w", err)
		}
		// Lineage runs newest first; the result lists the origin first.
		rendered[len(lineage)-1-i] = s
	}

	return specs.TallyResultSpec{
		ID:       id.String(),
		Value:    rendered[len(rendered)-1],
		Currency: config.Currency(),
		Lineage:  rendered,
	}, nil
}

// tally applies every step of config in order and returns the final number.
// When the config has a currency, the steps run on Money so mismatched
// currencies are rejected; the returned number is then the money's amount.
func (t *Tallier) tally(id uuid.UUID, config TallyConfig) (*Number, error) {
	var (
		current *Number
		money   *Money
	)
	if config.Currency() != "" {
		m, err := NewMoney(config.Initial(), config.Currency())
		if err != nil {
			return nil, fmt.Errorf("invalid initial value: %w", err)
		}
		money, current = m, m.Amount()
	} else {
		current = New(config.Initial())
	}

	for i, step := range config.Steps() {
		next, nextMoney, err := applyStep(current, money, step)
		if err != nil {
			return nil, fmt.Errorf("operation[%d] %s: %w", i, step.Operation().ToString(), err)
		}

		t.logger.Debug("applied tally step",
			zap.String("tally_id", id.String()),
			zap.Int("step", i),
			zap.String("op", step.Operation().ToString()),
			zap.String("operand", step.OperandText()),
			zap.String("result", next.Value()),
		)
		t.publish(infra.Derivation{
			ID:       uuid.New(),
			TallyID:  id,
			Step:     i,
			Op:       step.Operation().ToString(),
			Parent:   current.Value(),
			Operand:  step.OperandText(),
			Result:   next.Value(),
			Currency: config.Currency(),
		})

		current, money = next, nextMoney
	}

	t.publish(infra.Completion{
		ID:      uuid.New(),
		TallyID: id,
		Result:  current.Value(),
		Steps:   len(config.Steps()),
	})
	return current, nil
}

func applyStep(current *Number, money *Money, step TallyStep) (*Number, *Money, error) {
	if money != nil {
		var next *Money
		var err error
		switch step.Operation() {
		case TallyAdd:
			next, err = money.AddScaled(step.Operand(), step.Scale())
		default:
			next, err = money.SubtractScaled(step.Operand(), step.Scale())
		}
		if err != nil {
			return nil, nil, err
		}
		return next.Amount(), next, nil
	}

	var next *Number
	var err error
	switch step.Operation() {
	case TallyAdd:
		next, err = current.AddScaled(step.Operand(), step.Scale())
	default:
		next, err = current.SubtractScaled(step.Operand(), step.Scale())
	}
	return next, nil, err
}

func (t *Tallier) publish(e infra.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}
