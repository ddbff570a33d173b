// Package widget binds one raw-value field to an editable list of key/value
// rows.
//
// An Instance compiles the field into widget markup, keeps its rows in memory
// and writes the canonical JSON of those rows back into the raw element after
// every edit. The toggle controller switches between the structured rows and
// the raw JSON text, re-validating the text on the way back.
//
// User interaction arrives as page.Event values dispatched through the
// document's handler registry under the instance identifier:
//
//	doc.Dispatch(page.Click(inst.Identifier(), widget.DefaultClasses().Add))
//	doc.Dispatch(page.KeyUp(inst.Identifier(), widget.DefaultClasses().Input, 0, page.InputKey, "color"))
package widget
