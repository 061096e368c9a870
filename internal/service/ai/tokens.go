package ai

import (
	"fmt"
	"strings"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Budget units accepted by NewCostFunc.
const (
	CostUnitWords  = "words"
	CostUnitTokens = "tokens"
)

// TokenCounter counts tokens with the cl100k_base encoding, a close enough
// approximation for every supported provider.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

var installOfflineLoader sync.Once

// NewTokenCounter loads the cl100k_base encoding from the ranks embedded in
// the binary; it never touches the network.
func NewTokenCounter() (*TokenCounter, error) {
	installOfflineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer: get encoding: %w", err)
	}
	return &TokenCounter{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *TokenCounter) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// NewCostFunc returns the cost function for a budget unit.
// An empty unit means words.
func NewCostFunc(unit string) (CostFunc, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", CostUnitWords:
		return WordCost, nil
	case CostUnitTokens:
		counter, err := NewTokenCounter()
		if err != nil {
			return nil, err
		}
		return counter.Count, nil
	default:
		return nil, fmt.Errorf("unknown budget unit %q", unit)
	}
}
