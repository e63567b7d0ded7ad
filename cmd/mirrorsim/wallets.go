package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// resolveWallets decide la lista de wallets: uno explícito, o un archivo
// JSON/CSV con direcciones (salida típica del pipeline de discovery).
func resolveWallets(wallet, input string) ([]string, error) {
	switch {
	case wallet != "":
		return []string{wallet}, nil
	case input != "":
		return loadWalletsFromFile(input)
	}
	return nil, fmt.Errorf("no input provided: use -wallet or -input")
}

func loadWalletsFromFile(path string) ([]string, error) {
	switch {
	case strings.HasSuffix(path, ".json"):
		return loadWalletsJSON(path)
	case strings.HasSuffix(path, ".csv"):
		return loadWalletsCSV(path)
	}
	return nil, fmt.Errorf("unsupported wallet file %q: want .json or .csv", path)
}

// loadWalletsJSON acepta una lista de strings o una lista de objetos con
// alguna de las keys habituales de dirección.
func loadWalletsJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	var asStrings []string
	if err := json.Unmarshal(data, &asStrings); err == nil {
		return nonEmpty(asStrings), nil
	}

	var asObjects []map[string]any
	if err := json.Unmarshal(data, &asObjects); err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	var wallets []string
	for _, obj := range asObjects {
		for _, key := range []string{"wallet_address", "address", "proxyWallet", "wallet"} {
			if v, ok := obj[key].(string); ok && v != "" {
				wallets = append(wallets, v)
				break
			}
		}
	}
	return wallets, nil
}

// loadWalletsCSV busca la columna de dirección por los nombres habituales.
func loadWalletsCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%q: no data rows", path)
	}

	col := -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "wallet_address", "address", "proxyWallet", "wallet":
			col = i
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%q: no wallet column found in header", path)
	}

	var wallets []string
	for _, row := range rows[1:] {
		if col < len(row) && strings.TrimSpace(row[col]) != "" {
			wallets = append(wallets, strings.TrimSpace(row[col]))
		}
	}
	return wallets, nil
}

func nonEmpty(xs []string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
