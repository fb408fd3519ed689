package app

import (
	"bufio"
	"errors"
	"os"
	"strings"
)

// LoadEnvFiles reads dotenv files of KEY=VALUE lines into the process
// environment and returns how many variables were set. Variables already
// present in the environment before the call are left alone; among the files,
// later ones override earlier ones. Missing files are skipped.
func LoadEnvFiles(paths ...string) (int, error) {
	values := make(map[string]string)
	order := make([]string, 0)
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		err := parseEnvFile(p, func(k, v string) {
			if _, ok := values[k]; !ok {
				order = append(order, k)
			}
			values[k] = v
		})
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	set := 0
	for _, k := range order {
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, values[k]); err != nil {
			return set, err
		}
		set++
	}
	return set, nil
}

func parseEnvFile(path string, emit func(key, value string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		emit(key, unquote(strings.TrimSpace(val)))
	}
	return scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
