package security

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	appctx "planora/internal/core/context"
)

// Feature flag names (constants for type safety)
const (
	FlagExpirationSweep  = "expiration_sweep"
	FlagAmountOverride   = "amount_override"
	FlagPublicPriceCache = "public_price_cache"
)

// FeatureFlagProvider provides feature flag evaluation.
// Abstraction allows different backends: in-memory, database-backed, etc.
type FeatureFlagProvider interface {
	// IsEnabled checks if feature is enabled for the caller in ctx
	IsEnabled(ctx context.Context, flag string) bool
}

// Flag is a feature flag with an optional CEL condition evaluated against
// the caller's identity. An empty condition means the flag applies to all
// callers; `role == 'entrepreneur'` or
// `entrepreneur_id == '018f...'` stage a rollout per role or tenant.
type Flag struct {
	Name      string
	Enabled   bool
	Condition string
}

// flagEnv declares the identity attributes visible to flag conditions.
func flagEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("role", cel.StringType),
		cel.Variable("user_id", cel.StringType),
		cel.Variable("entrepreneur_id", cel.StringType),
		cel.Variable("email", cel.StringType),
	)
}

type compiledFlag struct {
	enabled bool
	program cel.Program // nil when the flag has no condition
}

// CELFlags evaluates flags with CEL conditions against the request identity.
// Thread-safe; Replace swaps the whole flag set atomically (used by the
// cache layer on invalidation).
type CELFlags struct {
	env *cel.Env

	mu       sync.RWMutex
	flags    map[string]compiledFlag
	defaults map[string]bool
}

// NewCELFlags creates a CEL-backed flag provider. Core behaviors ship
// enabled: a deployment without flag rows still expires overdue plans and
// accepts admin amount overrides. A stored row takes full control of its
// flag, so staged disablement via CEL conditions keeps working.
func NewCELFlags() (*CELFlags, error) {
	env, err := flagEnv()
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &CELFlags{
		env:   env,
		flags: make(map[string]compiledFlag),
		defaults: map[string]bool{
			FlagExpirationSweep: true,
			FlagAmountOverride:  true,
		},
	}, nil
}

// Replace compiles and installs a new flag set. Flags with invalid
// conditions are rejected with an error naming the flag.
func (f *CELFlags) Replace(flags []Flag) error {
	compiled := make(map[string]compiledFlag, len(flags))
	for _, fl := range flags {
		cf := compiledFlag{enabled: fl.Enabled}
		if fl.Condition != "" {
			ast, iss := f.env.Compile(fl.Condition)
			if iss != nil && iss.Err() != nil {
				return fmt.Errorf("flag %s: compile condition: %w", fl.Name, iss.Err())
			}
			if ast.OutputType() != cel.BoolType {
				return fmt.Errorf("flag %s: condition must be boolean, got %s", fl.Name, ast.OutputType())
			}
			prg, err := f.env.Program(ast)
			if err != nil {
				return fmt.Errorf("flag %s: build program: %w", fl.Name, err)
			}
			cf.program = prg
		}
		compiled[fl.Name] = cf
	}

	f.mu.Lock()
	f.flags = compiled
	f.mu.Unlock()
	return nil
}

// IsEnabled implements FeatureFlagProvider. A flag without a stored row
// falls back to its registered default (disabled for unregistered flags).
// A condition that fails to evaluate disables the flag (fail closed).
func (f *CELFlags) IsEnabled(ctx context.Context, flag string) bool {
	f.mu.RLock()
	cf, ok := f.flags[flag]
	f.mu.RUnlock()

	if !ok {
		return f.defaults[flag]
	}
	if !cf.enabled {
		return false
	}
	if cf.program == nil {
		return true
	}

	out, _, err := cf.program.Eval(identityActivation(ctx))
	if err != nil {
		return false
	}
	enabled, ok := out.Value().(bool)
	return ok && enabled
}

// identityActivation maps the request identity onto CEL variables.
// Anonymous requests evaluate with empty attributes.
func identityActivation(ctx context.Context) map[string]any {
	vars := map[string]any{
		"role":            "",
		"user_id":         "",
		"entrepreneur_id": "",
		"email":           "",
	}
	ident := appctx.GetIdentity(ctx)
	if ident == nil {
		return vars
	}
	vars["role"] = ident.Role.String()
	vars["user_id"] = ident.UserID.String()
	vars["email"] = ident.Email
	if ident.EntrepreneurID != nil {
		vars["entrepreneur_id"] = ident.EntrepreneurID.String()
	}
	return vars
}
