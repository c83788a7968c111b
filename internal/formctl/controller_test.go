package formctl_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/formcalc/internal/calc"
	"github.com/vk/formcalc/internal/dom"
	"github.com/vk/formcalc/internal/formctl"
	"github.com/vk/formcalc/internal/formula"
	"github.com/vk/formcalc/internal/relay"
)

func number(name, value string) *dom.Node {
	return dom.NewElement(name, "input", map[string]string{"type": "number", "value": value})
}

func text(name, value string) *dom.Node {
	return dom.NewElement(name, "input", map[string]string{"type": "text", "value": value})
}

func sum(a, b string) formula.Spec {
	return formula.Spec{
		Expression: "{a} + {b}",
		Variables: map[string]formula.Binding{
			"a": {SourceFieldName: a, Kind: formula.Numeric},
			"b": {SourceFieldName: b, Kind: formula.Numeric},
		},
	}
}

func input(t *testing.T, form *dom.MemoryForm, name, value string) {
	t.Helper()
	el, err := form.Input(name, value)
	require.NoError(t, err)
	form.Dispatch(el, calc.TriggerEvent(el))
}

func TestController_AddUnknownOutput(t *testing.T) {
	form := dom.NewMemoryForm(number("x", "1"))
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("missing", sum("x", "x"))
	require.ErrorIs(t, err, formctl.ErrUnknownOutput)
}

func TestController_AddDuplicateOutput(t *testing.T) {
	form := dom.NewMemoryForm(number("x", "1"), number("total", ""))
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("total", sum("x", "x"))
	require.NoError(t, err)
	_, err = c.Add("total", sum("x", "x"))
	require.ErrorIs(t, err, formctl.ErrDuplicateOutput)
}

func TestController_Cascade(t *testing.T) {
	form := dom.NewMemoryForm(
		number("price", "10"),
		number("shipping", "5"),
		number("tax", "2"),
		number("subtotal", ""),
		number("total", ""),
	)
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("subtotal", sum("price", "shipping"))
	require.NoError(t, err)
	_, err = c.Add("total", sum("subtotal", "tax"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"subtotal": "15", "total": "17"}, c.Values())

	input(t, form, "price", "20")
	assert.Equal(t, map[string]string{"subtotal": "25", "total": "27"}, c.Values())
}

func TestController_CascadeAddedInReverseOrder(t *testing.T) {
	form := dom.NewMemoryForm(
		number("price", "10"),
		number("tax", "2"),
		number("subtotal", ""),
		number("total", ""),
	)
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("total", sum("subtotal", "tax"))
	require.NoError(t, err)
	assert.Equal(t, "", c.Values()["total"], "subtotal is still empty")

	_, err = c.Add("subtotal", sum("price", "price"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"subtotal": "20", "total": "22"}, c.Values())
}

func TestController_RejectsCycles(t *testing.T) {
	form := dom.NewMemoryForm(number("a", ""), number("b", ""), number("x", "1"))
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("a", sum("b", "x"))
	require.NoError(t, err)

	_, err = c.Add("b", sum("a", "x"))
	require.ErrorIs(t, err, formctl.ErrCycle)
	assert.ErrorContains(t, err, "a -> b -> a")

	_, ok := c.Engine("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a"}, c.Outputs())
}

func TestController_RejectsSelfReference(t *testing.T) {
	form := dom.NewMemoryForm(number("total", "1"))
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("total", sum("total", "total"))
	require.ErrorIs(t, err, formctl.ErrCycle)
}

func TestController_Dirty(t *testing.T) {
	notes := text("notes", "")
	form := dom.NewMemoryForm(number("x", "1"), number("y", "2"), number("total", ""), notes)
	c := formctl.New(context.Background(), form)
	t.Cleanup(c.Dispose)

	_, err := c.Add("total", sum("x", "y"))
	require.NoError(t, err)
	assert.False(t, c.IsDirty(), "calculation writes refresh the baseline")

	input(t, form, "x", "5")
	assert.Equal(t, "7", c.Values()["total"])
	assert.False(t, c.IsDirty(), "a pass re-baselines after the source edit")

	notes.SetValue("hello")
	assert.True(t, c.IsDirty())

	c.UpdateFormHash()
	assert.False(t, c.IsDirty())
}

func TestController_FormHashIsOrderIndependent(t *testing.T) {
	a := formctl.New(context.Background(), dom.NewMemoryForm(text("x", "1"), text("y", "2")))
	b := formctl.New(context.Background(), dom.NewMemoryForm(text("y", "2"), text("x", "1")))
	assert.Equal(t, a.FormHash(), b.FormHash())
	assert.Len(t, a.FormHash(), 64)

	c := formctl.New(context.Background(), dom.NewMemoryForm(text("x", "1=y"), text("y", "")))
	assert.NotEqual(t, a.FormHash(), c.FormHash())
}

func TestController_Publishes(t *testing.T) {
	form := dom.NewMemoryForm(number("x", "1"), number("y", "2"), number("total", ""))
	rec := &relay.Recorder{}
	c := formctl.New(context.Background(), form, formctl.WithName("order"), formctl.WithPublisher(rec))

	_, err := c.Add("total", sum("x", "y"))
	require.NoError(t, err)
	input(t, form, "y", "oops")

	want := []relay.Update{
		{Form: "order", Field: "total", Value: "3"},
		{Form: "order", Field: "total", Value: ""},
	}
	if diff := cmp.Diff(want, rec.Updates()); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}

	c.Dispose()
	assert.True(t, rec.Closed())
}

func TestController_PublishesErrors(t *testing.T) {
	form := dom.NewMemoryForm(number("x", "1"), number("total", ""))
	rec := &relay.Recorder{}
	c := formctl.New(context.Background(), form, formctl.WithPublisher(rec),
		formctl.WithDiagnostics(calc.DiagnosticsFunc(func(context.Context, string, string, error) {})))
	t.Cleanup(c.Dispose)

	_, err := c.Add("total", formula.Spec{
		Expression: "{a} +",
		Variables:  map[string]formula.Binding{"a": {SourceFieldName: "x", Kind: formula.Numeric}},
	})
	require.NoError(t, err)

	updates := rec.Updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "", updates[0].Value)
	assert.NotEmpty(t, updates[0].Error)
}

func TestController_Dispose(t *testing.T) {
	form := dom.NewMemoryForm(number("x", "1"), number("y", "2"), number("total", ""))
	c := formctl.New(context.Background(), form)

	eng, err := c.Add("total", sum("x", "y"))
	require.NoError(t, err)
	require.Positive(t, form.TotalListeners())

	c.Dispose()
	c.Dispose()
	assert.True(t, eng.Disposed())
	assert.Zero(t, form.TotalListeners())

	_, err = c.Add("total", sum("x", "y"))
	assert.ErrorIs(t, err, formctl.ErrDisposed)
}
