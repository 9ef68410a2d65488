package strategy

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/ext"

	"github.com/compozy/tagrelease/internal/domain"
)

// expressionCostLimit bounds the work a single configured expression may do.
const expressionCostLimit = 1_000_000

// ExpressionCompiler builds custom strategies from CEL expressions. Expressions
// see three variables: tags (list of tag names), options (map of option values)
// and project (map with root and name).
type ExpressionCompiler struct {
	env *cel.Env
}

// NewExpressionCompiler creates a compiler with the strategy variables declared.
func NewExpressionCompiler() (*ExpressionCompiler, error) {
	env, err := cel.NewEnv(
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("options", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("project", cel.MapType(cel.StringType, cel.StringType)),
		ext.Strings(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create expression environment: %w", err)
	}
	return &ExpressionCompiler{env: env}, nil
}

// Compile turns the next and optional latest expressions into an object Spec.
func (c *ExpressionCompiler) Compile(next, latest string, options []domain.OptionSpec) (Spec, error) {
	nextProg, err := c.program(next)
	if err != nil {
		return Spec{}, fmt.Errorf("invalid next tag expression: %w", err)
	}
	spec := Object(evalFunc(nextProg), nil, options)
	if latest != "" {
		latestProg, err := c.program(latest)
		if err != nil {
			return Spec{}, fmt.Errorf("invalid latest tag expression: %w", err)
		}
		spec.Latest = LatestTagFunc(evalFunc(latestProg))
	}
	return spec, nil
}

func (c *ExpressionCompiler) program(expr string) (cel.Program, error) {
	ast, issues := c.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := c.env.Program(ast, cel.CostLimit(expressionCostLimit))
	if err != nil {
		return nil, err
	}
	return prg, nil
}

func evalFunc(prg cel.Program) NextTagFunc {
	return func(ctx context.Context, project domain.Project, tags []string, opts domain.Options) (string, error) {
		if tags == nil {
			tags = []string{}
		}
		options := map[string]any(opts)
		if options == nil {
			options = map[string]any{}
		}
		out, _, err := prg.ContextEval(ctx, map[string]any{
			"tags":    tags,
			"options": options,
			"project": map[string]string{"root": project.Root, "name": project.Name},
		})
		if err != nil {
			return "", fmt.Errorf("failed to evaluate tag expression: %w", err)
		}
		if out.Type() != types.StringType {
			return "", fmt.Errorf("tag expression must return a string, got %v", out.Type())
		}
		return out.Value().(string), nil
	}
}
