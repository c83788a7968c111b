package app

import (
	"fmt"
	"strconv"

	"github.com/vk/formcalc/internal/calc"
	"github.com/vk/formcalc/internal/config"
	"github.com/vk/formcalc/internal/dom"
)

// buildForm creates the in-memory document described by the model.
func buildForm(m *config.FormModel) *dom.MemoryForm {
	form := dom.NewMemoryForm()
	for _, f := range m.Fields {
		attrs := make(map[string]string, len(f.Attributes)+2)
		for k, v := range f.Attributes {
			attrs[k] = v
		}
		attrs["value"] = f.Value
		if f.Checked {
			attrs["checked"] = strconv.FormatBool(true)
		}
		form.Add(dom.NewElement(f.Name, f.Tag, attrs))
	}
	return form
}

// apply performs one interaction and dispatches the event a browser would
// fire for it.
func apply(form *dom.MemoryForm, in Interaction) error {
	elements := form.ElementsByName(in.Name)
	if len(elements) == 0 {
		return fmt.Errorf("interaction %s: %w", in, dom.ErrNoSuchElement)
	}

	var (
		target dom.Element
		err    error
	)
	if dom.IsChoice(elements[0]) {
		target, err = form.Check(in.Name, in.Value)
	} else {
		target, err = form.Input(in.Name, in.Value)
	}
	if err != nil {
		return fmt.Errorf("interaction %s: %w", in, err)
	}
	form.Dispatch(target, calc.TriggerEvent(target))
	return nil
}
