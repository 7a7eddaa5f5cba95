//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package caselaw

import "errors"

var (
	// ErrEmptyQuery is returned when the search text is blank.
	ErrEmptyQuery = errors.New("caselaw: query text is empty")
	// ErrInvalidDate is returned when a date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("caselaw: invalid date")
	// ErrInvalidLimit is returned for a non positive limit.
	ErrInvalidLimit = errors.New("caselaw: limit must be positive")
	// ErrInvalidTable is returned when the configured table is not a plain identifier.
	ErrInvalidTable = errors.New("caselaw: invalid table name")
	// ErrNoConnection is returned when no connection string is configured.
	ErrNoConnection = errors.New("caselaw: no database connection configured")
)
