package deid

import (
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/gillesdemey/go-deid/recipe"
)

type splitOptions struct {
	By        string `mapstructure:"by"`
	MinLength int    `mapstructure:"minlength"`
}

// parseSplitOptions reads `by="^";minlength=4`. The separator defaults to a
// space.
func parseSplitOptions(s string) (splitOptions, error) {
	raw := map[string]string{}
	for _, param := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok {
			continue
		}
		raw[strings.ToLower(strings.TrimSpace(k))] = strings.Trim(strings.TrimSpace(v), `"'`)
	}
	opts := splitOptions{By: " "}
	if err := mapstructure.WeakDecode(raw, &opts); err != nil {
		return splitOptions{}, err
	}
	if opts.By == "" {
		opts.By = " "
	}
	return opts, nil
}

// extractValues builds a %values list: FIELD adds non-empty values, SPLIT
// adds the parts longer than minlength. Values are unique and keep their
// first-seen order.
func (p *DicomParser) extractValues(actions []recipe.GroupAction) []string {
	var values []string
	seen := map[string]bool{}
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	for _, action := range actions {
		fields := p.Index().Resolve(action.Field)
		switch action.Action {
		case recipe.GroupField:
			for _, f := range fields {
				if v := f.Value(); v != "" && !f.Element.IsSequence() {
					add(v)
				}
			}
		case recipe.GroupSplit:
			opts, err := parseSplitOptions(action.Value)
			if err != nil {
				p.logger.Warnf("Invalid SPLIT options %q: %v", action.Value, err)
				continue
			}
			for _, f := range fields {
				for _, part := range strings.Split(f.Value(), opts.By) {
					if len(part) > opts.MinLength {
						add(part)
					}
				}
			}
		default:
			p.logger.Warnf("%s is not a valid values list action", action.Action)
		}
	}
	return values
}

// extractFields builds a %fields list from FIELD actions.
func (p *DicomParser) extractFields(actions []recipe.GroupAction) []*Field {
	var fields []*Field
	seen := map[string]bool{}
	for _, action := range actions {
		if action.Action != recipe.GroupField {
			p.logger.Warnf("%s is not supported in a fields list", action.Action)
			continue
		}
		for _, f := range p.Index().Resolve(action.Field) {
			if !seen[f.UID] {
				seen[f.UID] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}
