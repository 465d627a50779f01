package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/anchor-go/client/example/internal/workloads"
	"gopkg.in/yaml.v3"
)

var errMissingProgramID = errors.New("missing program id")

// programsFile is the on-disk form of the deployed program ids, as written
// by a deploy script:
//
//	composite: <base58>
//	basic_2: <base58>
//	basic_4: <base58>
//	events: <base58>
//	optional: <base58>
type programsFile struct {
	Composite string `yaml:"composite"`
	Basic2    string `yaml:"basic_2"`
	Basic4    string `yaml:"basic_4"`
	Events    string `yaml:"events"`
	Optional  string `yaml:"optional"`
}

// merge overlays non-empty fields of o onto f.
func (f programsFile) merge(o programsFile) programsFile {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return programsFile{
		Composite: pick(f.Composite, o.Composite),
		Basic2:    pick(f.Basic2, o.Basic2),
		Basic4:    pick(f.Basic4, o.Basic4),
		Events:    pick(f.Events, o.Events),
		Optional:  pick(f.Optional, o.Optional),
	}
}

func readProgramsFile(path string) (programsFile, error) {
	var f programsFile
	if path == "" {
		return f, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read programs file: %w", err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("failed to parse programs file %s: %w", path, err)
	}
	return f, nil
}

// resolveProgramIDs reads the programs file at path, if any, lets flags
// override it, and parses every id.
func resolveProgramIDs(path string, flags programsFile) (workloads.ProgramIDs, error) {
	fromFile, err := readProgramsFile(path)
	if err != nil {
		return workloads.ProgramIDs{}, err
	}
	merged := fromFile.merge(flags)

	var errs []error
	parse := func(name, raw string) solana.PublicKey {
		if raw == "" {
			errs = append(errs, fmt.Errorf("%w: %s", errMissingProgramID, name))
			return solana.PublicKey{}
		}
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid program id for %s: %w", name, err))
		}
		return pk
	}
	ids := workloads.ProgramIDs{
		Composite: parse("composite", merged.Composite),
		Basic2:    parse("basic_2", merged.Basic2),
		Basic4:    parse("basic_4", merged.Basic4),
		Events:    parse("events", merged.Events),
		Optional:  parse("optional", merged.Optional),
	}
	return ids, errors.Join(errs...)
}
