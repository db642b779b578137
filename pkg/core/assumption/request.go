package assumption

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v2"

	"dcf_valuation/pkg/core/utils"
	"dcf_valuation/pkg/core/valuation"
	"dcf_valuation/pkg/models"
)

// ValuationRequest is a complete valuation job as read from a file or an API body.
// Any of Assumptions, WACCInputs and TerminalInputs may be omitted; Resolve fills the
// gaps from a Source.
type ValuationRequest struct {
	Company        models.Company                 `json:"company" yaml:"company"`
	RiskFreeRate   float64                        `json:"riskFreeRate" yaml:"riskFreeRate"`
	Assumptions    *valuation.ScenarioSet         `json:"assumptions,omitempty" yaml:"assumptions"`
	WACCInputs     *valuation.WACCInputs          `json:"waccInputs,omitempty" yaml:"waccInputs"`
	TerminalInputs *valuation.TerminalValueInputs `json:"terminalInputs,omitempty" yaml:"terminalInputs"`
}

// RequestExtensions lists the file extensions LoadRequest accepts.
var RequestExtensions = []string{".yaml", ".yml", ".json", ".hjson", ".toml"}

// LoadRequest reads a ValuationRequest from a .yaml, .yml, .json, .hjson or .toml file.
// TOML keys match field names case-insensitively.
func LoadRequest(path string) (ValuationRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValuationRequest{}, fmt.Errorf("read request: %w", err)
	}

	var req ValuationRequest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	case ".json":
		err = json.Unmarshal(data, &req)
	case ".toml":
		err = toml.Unmarshal(data, &req)
	case ".hjson":
		var converted string
		converted, err = utils.ParseHJSON(string(data))
		if err == nil {
			err = json.Unmarshal([]byte(converted), &req)
		}
	default:
		return ValuationRequest{}, fmt.Errorf("%w: unsupported request format %q", valuation.ErrMalformedInput, ext)
	}
	if err != nil {
		return ValuationRequest{}, fmt.Errorf("%w: parse %s: %v", valuation.ErrMalformedInput, filepath.Base(path), err)
	}

	return req, nil
}

// Resolve returns a validated bundle. When the request carries every part the source is
// not consulted; otherwise the source's bundle is generated and the supplied parts override it.
func (r ValuationRequest) Resolve(ctx context.Context, src Source) (Bundle, error) {
	var b Bundle
	if r.Assumptions != nil && r.WACCInputs != nil && r.TerminalInputs != nil {
		b = Bundle{Origin: OriginRequest}
	} else {
		generated, err := src.Generate(ctx, Request{Company: r.Company, RiskFreeRate: r.RiskFreeRate})
		if err != nil {
			return Bundle{}, err
		}
		b = generated
	}

	if r.Assumptions != nil {
		b.Assumptions = *r.Assumptions
	}
	if r.WACCInputs != nil {
		b.WACCInputs = *r.WACCInputs
	}
	if r.TerminalInputs != nil {
		b.TerminalInputs = *r.TerminalInputs
	}

	if err := b.Validate(); err != nil {
		return Bundle{}, err
	}
	return b, nil
}
