// Copyright 2021-2022
// SPDX-License-Identifier: Apache-2.0
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

package series

import (
	"github.com/rs/zerolog"

	"github.com/hedgelab/hedgelab/datekey"
)

func (s *Series[V]) MarshalZerologObject(e *zerolog.Event) {
	if s == nil {
		return
	}
	e.Str("Unit", string(s.Unit))
	e.Int("Len", s.Len())
	e.Str("Start", datekey.Format(s.Start()))
	e.Str("End", datekey.Format(s.End()))
}

func (pt Point[V]) MarshalZerologObject(e *zerolog.Event) {
	e.Str("Date", datekey.Format(pt.Date)).Float64("Value", float64(pt.Value))
}
