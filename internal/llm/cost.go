package llm

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var oneThousand = decimal.NewFromInt(1000)

// pricing holds USD prices per 1K tokens. A nil pricing disables cost
// accounting.
type pricing struct {
	input  decimal.Decimal
	output decimal.Decimal
}

func parsePricing(inputPer1K, outputPer1K string) (*pricing, error) {
	if inputPer1K == "" && outputPer1K == "" {
		return nil, nil
	}
	input, err := decimal.NewFromString(inputPer1K)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing input price %q", inputPer1K)
	}
	output, err := decimal.NewFromString(outputPer1K)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing output price %q", outputPer1K)
	}
	return &pricing{input: input, output: output}, nil
}

// requestCost returns the cost of one request, or nil when pricing is not
// configured.
func (p *pricing) requestCost(promptTokens, completionTokens int) *decimal.Decimal {
	if p == nil {
		return nil
	}
	promptCost := p.input.Mul(decimal.NewFromInt(int64(promptTokens))).Div(oneThousand)
	completionCost := p.output.Mul(decimal.NewFromInt(int64(completionTokens))).Div(oneThousand)
	cost := promptCost.Add(completionCost)
	return &cost
}
