//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the fruits project using Mage.
//
// Usage:
//
//	mage build             Compile the fruits binary to bin/
//	mage install           Install fruits to GOPATH/bin
//	mage clean             Remove build artifacts
//	mage test:all          Run all tests
//	mage test:race         Run all tests with the race detector
//	mage test:cover        Write coverage.out and print the summary
//	mage test:integration  Run Mongo and Postgres tests against live servers
//	mage lint              Run golangci-lint
//	mage vet               Run go vet
package main
