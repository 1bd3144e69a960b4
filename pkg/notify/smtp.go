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
	"fmt"
	"net/smtp"
	"strings"

	"github.com/UnderAOverE/nsync/pkg/errors"
)

// SMTP delivers reports as plain-text email over an unauthenticated relay.
type SMTP struct {
	Addr string // host:port of the relay
	From string
	To   []string

	// send is swapped in tests.
	send func(addr, from string, to []string, msg []byte) error
}

// NewSMTP returns an SMTP notifier for the given relay and recipients.
func NewSMTP(addr, from string, to []string) (*SMTP, error) {
	if addr == "" || from == "" || len(to) == 0 {
		return nil, errors.New(errors.ErrCodeConfiguration,
			"smtp notifier requires relay address, sender, and at least one recipient")
	}
	return &SMTP{
		Addr: addr,
		From: from,
		To:   to,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}, nil
}

// Notify implements Notifier.
func (s *SMTP) Notify(_ context.Context, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.From, strings.Join(s.To, ", "), subject, body)
	if err := s.send(s.Addr, s.From, s.To, []byte(msg)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to deliver notification", err)
	}
	return nil
}
