package ty

import (
	"os"
	"regexp"
)

var varPattern = regexp.MustCompile(`\$(?:\{([a-zA-Z_][a-zA-Z0-9_]*)(:-[^}]*)?\}|([a-zA-Z_][a-zA-Z0-9_]*))`)

// ResolveVars expands ${VAR}, ${VAR:-default} and $VAR in input, looking up
// vars first and the environment second. Unknown variables without a default
// are left as written.
func ResolveVars(input string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(input, func(v string) string {
		m := varPattern.FindStringSubmatch(v)
		varName := m[1]
		if varName == "" {
			varName = m[3]
		}

		if val, ok := vars[varName]; ok {
			return val
		}

		if val, ok := os.LookupEnv(varName); ok {
			return val
		}

		if m[2] != "" {
			return m[2][2:]
		}

		return v
	})
}

func (ms MS) ResolveVariables() MS {
	return ms.ResolveVariablesWith(map[string]string{})
}

func (ms MS) ResolveVariablesWith(vars map[string]string) MS {
	msResolved := MS{}

	for k, v := range ms {
		msResolved[k] = ResolveVars(v, vars)
	}

	return msResolved
}
