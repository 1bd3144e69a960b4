// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers a textual report. Delivery is best-effort: callers log
// failures and never escalate them.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// Log is a Notifier that writes the report to the structured log. The
// default sink when no mail transport is configured.
type Log struct{}

// Notify implements Notifier.
func (Log) Notify(_ context.Context, subject, body string) error {
	slog.Warn("notification", "subject", subject, "body", body)
	return nil
}
