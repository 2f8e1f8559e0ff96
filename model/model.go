/*
Copyright 2025 Kobpay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	// StatusPending is the initial state of every deposit and withdrawal.
	StatusPending = "PENDING"
	// StatusSuccessed is the terminal success state. Spelling follows the
	// provider's callback contract.
	StatusSuccessed = "SUCCESSED"
	// StatusFailed is the terminal failure state.
	StatusFailed = "FAILED"
)

// Record is the structural shape shared by deposits and withdrawals.
// Deployment-specific entities compose their extra fields alongside it
// instead of inheriting from a base type.
type Record interface {
	RecordID() string
	RecordStatus() string
	RecordAmount() float64
}

// GenerateUUIDWithSuffix generates a UUID prefixed with a module name,
// giving identifiers a context-specific prefix such as "dpst_" or "wthd_".
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// IsTerminal reports whether a status is one of the two terminal states.
func IsTerminal(status string) bool {
	return status == StatusSuccessed || status == StatusFailed
}
