package hcl

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/formcalc/internal/config"
	"github.com/vk/formcalc/internal/ctxlog"
	"github.com/vk/formcalc/internal/fsutil"
)

var (
	// ErrNoForm is returned when no loaded file declares a form block.
	ErrNoForm = errors.New("no form block found")
	// ErrMultipleForms is returned when more than one form block is declared.
	ErrMultipleForms = errors.New("only one form block is allowed")
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL form loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file reachable from paths, translates the blocks
// into one FormModel and validates it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.FormModel, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	hclFiles, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()
	var (
		forms    []*Form
		formFile string
		loose    []*Calculation
	)

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		if len(root.Forms) > 0 && formFile == "" {
			formFile = file
		}
		forms = append(forms, root.Forms...)
		loose = append(loose, root.Calculations...)
	}

	switch {
	case len(forms) == 0:
		return nil, ErrNoForm
	case len(forms) > 1:
		return nil, fmt.Errorf("%w: found %d", ErrMultipleForms, len(forms))
	}

	form := forms[0]
	form.Calculations = append(form.Calculations, loose...)
	logger.Debug("Translating form.", "form", form.Name, "file", formFile)

	model, err := l.translateForm(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := validate(model); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.", "form", model.Name, "fields", len(model.Fields), "calculations", len(model.Calculations))
	return model, nil
}

// typeKeyword reads a variable type given either as a bare keyword or as a
// string literal. An omitted type yields "".
func typeKeyword(expr hcl.Expression) (string, error) {
	if !isExprDefined(expr) {
		return "", nil
	}
	if root := hcl.ExprAsKeyword(expr); root != "" {
		return root, nil
	}
	var s string
	if diags := gohcl.DecodeExpression(expr, nil, &s); diags.HasErrors() {
		return "", diags
	}
	return s, nil
}

// isExprDefined reports whether an optional attribute was written in the
// source. gohcl fills omitted hcl.Expression fields with zero-width
// placeholders.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
