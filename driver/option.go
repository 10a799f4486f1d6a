package driver

import "fmt"

const (
	defaultMaxDepth = 10000
	defaultMaxSteps = 5000000
)

type parserConfig struct {
	maxDepth       int
	maxSteps       int
	allowConflicts bool
}

func newParserConfig(opts []ParserOption) (*parserConfig, error) {
	c := &parserConfig{
		maxDepth: defaultMaxDepth,
		maxSteps: defaultMaxSteps,
	}
	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

type ParserOption func(c *parserConfig) error

// MaxDepth limits the nesting of non-terminals being matched.
func MaxDepth(n int) ParserOption {
	return func(c *parserConfig) error {
		if n < 1 {
			return fmt.Errorf("max depth must be greater than 0: %v", n)
		}
		c.maxDepth = n
		return nil
	}
}

// MaxSteps limits the number of symbols the backtracking parser tries to match.
func MaxSteps(n int) ParserOption {
	return func(c *parserConfig) error {
		if n < 1 {
			return fmt.Errorf("max steps must be greater than 0: %v", n)
		}
		c.maxSteps = n
		return nil
	}
}

// AllowConflicts lets the predictive parser accept a grammar that isn't backtrack-free. For a token kind selecting
// multiple alternatives, the first one wins.
func AllowConflicts() ParserOption {
	return func(c *parserConfig) error {
		c.allowConflicts = true
		return nil
	}
}
