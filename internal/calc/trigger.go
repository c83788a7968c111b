package calc

import (
	"strings"

	"github.com/vk/formcalc/internal/dom"
)

// Trigger event types.
const (
	EventChange = "change"
	EventInput  = "input"
	EventClick  = "click"
	EventKeyup  = "keyup"
)

// TriggerEvent returns the event that signals a settled value change for el:
// change for selects and date inputs, input for number inputs, click for
// checkboxes and radios, and keyup for everything else.
func TriggerEvent(el dom.Element) string {
	tag := strings.ToLower(el.TagName())
	inputType := strings.ToLower(el.Attr("type"))

	switch {
	case tag == "select" || inputType == "date":
		return EventChange
	case inputType == "number":
		return EventInput
	case inputType == "checkbox" || inputType == "radio":
		return EventClick
	default:
		return EventKeyup
	}
}
