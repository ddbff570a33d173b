// Package template defines the rendering seam the widget compiles markup
// through. Implementations live in sub-packages; gotemplate wraps pongo2.
package template
