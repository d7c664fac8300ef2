// Copyright 2023 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

package drafts

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// Loader applies a Payload by merge-patching the target draft's stored
// metadata document in place.
type Loader struct{}

// Run implements actions.Loader.
func (Loader) Run(ctx context.Context, q target.Tx, state types.StateScope, payload actions.Payload) error {
	p, ok := payload.(Payload)
	if !ok {
		return errors.Errorf("drafts.Loader: unexpected payload type %T", payload)
	}
	if p.JSONPatch.IsEmpty() {
		return nil
	}

	var current []byte
	row := q.QueryRowContext(ctx, `SELECT json FROM rdm_drafts_metadata WHERE id = $1 FOR UPDATE`, p.DraftID)
	if err := row.Scan(&current); err != nil {
		return errors.Wrap(err, "load current draft metadata")
	}

	merged, err := p.JSONPatch.Apply(current)
	if err != nil {
		return errors.Wrap(err, "apply metadata patch")
	}
	if !json.Valid(merged) {
		return errors.New("drafts.Loader: patched document is not valid JSON")
	}

	if _, err := q.ExecContext(ctx,
		`UPDATE rdm_drafts_metadata SET json = $2, updated = now() WHERE id = $1`,
		p.DraftID, merged,
	); err != nil {
		return errors.Wrap(err, "persist patched draft metadata")
	}

	if p.ParentID != "" {
		if _, err := q.ExecContext(ctx,
			`UPDATE rdm_drafts_metadata SET parent_id = $2 WHERE id = $1 AND parent_id IS NULL`,
			p.DraftID, p.ParentID,
		); err != nil {
			return errors.Wrap(err, "link draft to parent record")
		}
	}

	if p.BucketID != "" {
		link, err := json.Marshal(bucketLink{DraftID: p.DraftID})
		if err != nil {
			return errors.Wrap(err, "encode bucket link")
		}
		if err := state.Put(types.NamespaceBuckets, p.BucketID, link); err != nil {
			return errors.Wrap(err, "link bucket to draft")
		}
	}

	return nil
}

// bucketLink is the value stored in the "buckets" StateStore namespace
// on first publish, read back by files.lookupBucketDraft once an
// upload/delete Tx against that bucket is seen.
type bucketLink struct {
	DraftID string `json:"draft_id"`
}
