//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets.
type Test mg.Namespace

const coverProfile = "coverage.out"

// All runs every package's tests. Backend tests that need a live server skip.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover writes coverage.out and prints per-function coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverProfile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// Integration runs the Mongo and Postgres backend tests. It needs
// FRUITS_MONGO_URI, FRUITS_POSTGRES_DSN or both.
func (Test) Integration() error {
	var pkgs []string
	if os.Getenv("FRUITS_MONGO_URI") != "" {
		pkgs = append(pkgs, "./internal/mongo/...")
	}
	if os.Getenv("FRUITS_POSTGRES_DSN") != "" {
		pkgs = append(pkgs, "./internal/postgres/...")
	}
	if len(pkgs) == 0 {
		fmt.Println("Set FRUITS_MONGO_URI or FRUITS_POSTGRES_DSN to run integration tests.")
		return nil
	}
	args := append([]string{"test", "-v", "-count=1"}, pkgs...)
	return sh.RunV(binGo, args...)
}
