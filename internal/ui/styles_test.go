package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderPlainText(t *testing.T) {
	// Given: no colour styles
	styles := NoColorStyles()

	// Then: every style renders text unchanged
	for _, s := range []string{
		styles.Header.Render("x"),
		styles.Success.Render("x"),
		styles.Warning.Render("x"),
		styles.Error.Render("x"),
		styles.Dim.Render("x"),
		styles.Label.Render("x"),
		styles.Path.Render("x"),
		styles.Pattern.Render("x"),
	} {
		assert.Equal(t, "x", s)
	}
}

func TestDefaultStyles_KeepText(t *testing.T) {
	// Given: default styles
	styles := DefaultStyles()

	// When: rendering
	rendered := styles.Header.Render("Rules")

	// Then: the text survives whatever escape codes the terminal profile adds
	assert.Contains(t, rendered, "Rules")
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "test", GetStyles(true).Success.Render("test"))
	assert.Contains(t, GetStyles(false).Success.Render("test"), "test")
}
