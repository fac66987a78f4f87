// Package recipes holds the effect recipes. Each recipe validates its
// flags against a recipe.Spec and implements its effect purely by
// composing invocations of the installed ImageMagick binary, chaining
// stages through workspace temp files or stdout/stdin pipes. No pixel
// is touched in-process.
package recipes
