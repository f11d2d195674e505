package internal

import (
	"strings"
	"testing"

	"github.com/chrisconley/number/internal/infra"
	"github.com/chrisconley/number/specs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func intPtr(i int) *int { return &i }

func TestTally(t *testing.T) {
	t.Run("replays operations and returns the lineage", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial: 5,
			Operations: []specs.OperationSpec{
				{Op: "add", Operand: 2},
				{Op: "add", Operand: "8"},
			},
		}

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "15.0000", result.Value)
		assert.Equal(t, []string{"5.0000", "7.0000", "15.0000"}, result.Lineage)
		assert.Empty(t, result.Currency)
		_, err = uuid.Parse(result.ID)
		assert.NoError(t, err)
	})

	t.Run("without operations returns the initial value", func(t *testing.T) {
		result, err := Tally(specs.TallySpec{Initial: "200"})

		require.NoError(t, err)
		assert.Equal(t, "200.0000", result.Value)
		assert.Equal(t, []string{"200.0000"}, result.Lineage)
	})

	t.Run("subtract aliases are interchangeable", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial: "200",
			Operations: []specs.OperationSpec{
				{Op: "subtract", Operand: "50"},
				{Op: "sub", Operand: 50.0},
				{Op: "minus", Operand: 50},
			},
		}

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "50.0000", result.Value)
	})

	t.Run("renders at the tally scale", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial:    "1",
			Scale:      intPtr(2),
			Operations: []specs.OperationSpec{{Op: "add", Operand: "0.129"}},
		}

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "1.12", result.Value)
		assert.Equal(t, []string{"1.00", "1.12"}, result.Lineage)
	})

	t.Run("step scale overrides the tally scale", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial: "1",
			Scale:   intPtr(4),
			Operations: []specs.OperationSpec{
				{Op: "add", Operand: "0.129", Scale: intPtr(1)},
			},
		}

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "1.1000", result.Value)
	})

	t.Run("with currency runs on money", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial:    5,
			Currency:   "EUR",
			Operations: []specs.OperationSpec{{Op: "add", Operand: 2}},
		}

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "7.0000", result.Value)
		assert.Equal(t, "EUR", result.Currency)
		assert.Equal(t, []string{"5.0000", "7.0000"}, result.Lineage)
	})

	t.Run("with unknown currency returns error", func(t *testing.T) {
		_, err := Tally(specs.TallySpec{Initial: 5, Currency: "EURO"})

		assert.ErrorIs(t, err, ErrInvalidCurrency)
	})

	t.Run("rejects operands of unsupported kinds", func(t *testing.T) {
		for _, operand := range []any{[]any{}, map[string]any{}, true, nil} {
			spec := specs.TallySpec{
				Initial:    "200",
				Operations: []specs.OperationSpec{{Op: "add", Operand: operand}},
			}

			_, err := Tally(spec)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOperandKind)
			assert.Contains(t, err.Error(), "operation[0]")
		}
	})

	t.Run("rejects unknown operations", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial:    "200",
			Operations: []specs.OperationSpec{{Op: "multiply", Operand: 2}},
		}

		_, err := Tally(spec)

		assert.ErrorIs(t, err, ErrUnknownOperation)
	})

	t.Run("reports malformed values when they are used", func(t *testing.T) {
		spec := specs.TallySpec{
			Initial: "200",
			Operations: []specs.OperationSpec{
				{Op: "add", Operand: "1"},
				{Op: "add", Operand: "two"},
			},
		}

		_, err := Tally(spec)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedDecimal)
		assert.Contains(t, err.Error(), "operation[1] add")
	})

	t.Run("reports a malformed initial value", func(t *testing.T) {
		_, err := Tally(specs.TallySpec{Initial: "abc"})

		assert.ErrorIs(t, err, ErrMalformedDecimal)
	})
}

func TestTallierLogsSteps(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tallier := NewTallier(WithLogger(zap.New(core)))

	_, err := tallier.Tally(specs.TallySpec{
		Initial: "5",
		Operations: []specs.OperationSpec{
			{Op: "add", Operand: "2"},
			{Op: "minus", Operand: "1"},
		},
	})
	require.NoError(t, err)

	steps := logs.FilterMessage("applied tally step").All()
	require.Len(t, steps, 2)
	assert.Equal(t, "add", steps[0].ContextMap()["op"])
	assert.Equal(t, "7.0000", steps[0].ContextMap()["result"])
	assert.Equal(t, "subtract", steps[1].ContextMap()["op"])
	assert.Equal(t, "6.0000", steps[1].ContextMap()["result"])

	t.Run("failures are logged at warn level", func(t *testing.T) {
		_, err := tallier.Tally(specs.TallySpec{
			Initial:    "5",
			Operations: []specs.OperationSpec{{Op: "add", Operand: "x"}},
		})
		require.Error(t, err)

		warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
		require.Len(t, warnings, 1)
		assert.Equal(t, "tally failed", warnings[0].Message)
	})
}

func TestTallierPublishesDerivations(t *testing.T) {
	bus := infra.NewBus()
	var derived []infra.Derivation
	var completed []infra.Completion
	bus.Subscribe(infra.NumberDerived, func(e infra.Event) { derived = append(derived, e.(infra.Derivation)) })
	bus.Subscribe(infra.MoneyDerived, func(e infra.Event) { derived = append(derived, e.(infra.Derivation)) })
	bus.Subscribe(infra.TallyCompleted, func(e infra.Event) { completed = append(completed, e.(infra.Completion)) })
	tallier := NewTallier(WithBus(bus))

	result, err := tallier.Tally(specs.TallySpec{
		Initial: 5,
		Operations: []specs.OperationSpec{
			{Op: "add", Operand: 2},
			{Op: "add", Operand: 8},
		},
	})
	require.NoError(t, err)

	require.Len(t, derived, 2)
	assert.Equal(t, infra.NumberDerived, derived[0].EventType())
	assert.Equal(t, "5", derived[0].Parent)
	assert.Equal(t, "2", derived[0].Operand)
	assert.Equal(t, "7.0000", derived[0].Result)
	assert.Equal(t, "7.0000", derived[1].Parent)
	assert.Equal(t, "15.0000", derived[1].Result)
	assert.Equal(t, derived[0].TallyID, derived[1].TallyID)
	assert.NotEqual(t, derived[0].ID, derived[1].ID)

	require.Len(t, completed, 1)
	assert.Equal(t, result.ID, completed[0].TallyID.String())
	assert.Equal(t, 2, completed[0].Steps)

	t.Run("money tallies publish money events", func(t *testing.T) {
		derived = nil

		_, err := tallier.Tally(specs.TallySpec{
			Initial:    "1",
			Currency:   "JPY",
			Operations: []specs.OperationSpec{{Op: "add", Operand: "1"}},
		})
		require.NoError(t, err)

		require.Len(t, derived, 1)
		assert.Equal(t, infra.MoneyDerived, derived[0].EventType())
		assert.Equal(t, "JPY", derived[0].Currency)
	})
}

func TestTallyFromYAML(t *testing.T) {
	t.Run("runs a loaded document", func(t *testing.T) {
		doc := `
initial: 5
scale: 2
operations:
  - op: add
    operand: 2
  - op: add
    operand: "8.5"
`
		spec, err := specs.LoadTallySpec(strings.NewReader(doc))
		require.NoError(t, err)

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "15.50", result.Value)
	})

	t.Run("keeps every digit of unquoted decimals", func(t *testing.T) {
		doc := `
initial: 12345678901234567890.5
operations:
  - op: add
    operand: 0.1000000000000000055
`
		spec, err := specs.LoadTallySpec(strings.NewReader(doc))
		require.NoError(t, err)

		result, err := Tally(spec)

		require.NoError(t, err)
		assert.Equal(t, "12345678901234567890.6000", result.Value)
		assert.Equal(t, []string{"12345678901234567890.5000", "12345678901234567890.6000"}, result.Lineage)
	})

	t.Run("rejects list, map, boolean and null operands", func(t *testing.T) {
		for _, operand := range []string{"[]", "{}", "true", "null", "[1, 2]", "{value: 1}"} {
			doc := "initial: 200\noperations:\n  - op: add\n    operand: " + operand + "\n"
			spec, err := specs.LoadTallySpec(strings.NewReader(doc))
			require.NoError(t, err, operand)

			_, err = Tally(spec)

			assert.ErrorIs(t, err, ErrInvalidOperandKind, operand)
		}
	})
}
