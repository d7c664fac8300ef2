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

package files

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/slint/rdm-migrator-go/internal/actions"
	"github.com/slint/rdm-migrator-go/internal/faults"
	"github.com/slint/rdm-migrator-go/internal/target"
	"github.com/slint/rdm-migrator-go/internal/types"
)

// bucketLink is the value stored in the "buckets" StateStore namespace:
// the target draft/record id owning a given source bucket_id.
type bucketLink struct {
	DraftID string `json:"draft_id"`
}

func lookupBucketDraft(state types.StateScope, bucketID string) (string, error) {
	raw, ok, err := state.Get(types.NamespaceBuckets, bucketID)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", faults.StateLookupMiss(errors.Errorf("no draft linked to bucket %q", bucketID))
	}
	var link bucketLink
	if err := json.Unmarshal(raw, &link); err != nil {
		return "", errors.Wrap(err, "decode bucket link")
	}
	return link.DraftID, nil
}

// UploadLoader applies an UploadPayload: insert the file instance, link
// it to the owning draft/record, and flip is_head bookkeeping for a
// replacement.
type UploadLoader struct {
	product target.Product
	idgen   target.IDGenerator
}

// NewUploadLoader returns an UploadLoader that mints rdm_files_instance
// ids with the IDGenerator matching product. Run branches on product:
// a Postgres/CockroachDB target mints the id from a sequence before
// the INSERT, while a MySQL target inserts into its AUTO_INCREMENT
// column first and reads the id back afterwards.
func NewUploadLoader(product target.Product) UploadLoader {
	return UploadLoader{product: product, idgen: target.IDGeneratorFor(product)}
}

// Run implements actions.Loader.
func (l UploadLoader) Run(ctx context.Context, q target.Tx, state types.StateScope, payload actions.Payload) error {
	p, ok := payload.(UploadPayload)
	if !ok {
		return errors.Errorf("files.UploadLoader: unexpected payload type %T", payload)
	}

	bucketID := p.Bucket.String("id")
	draftID, err := lookupBucketDraft(state, bucketID)
	if err != nil {
		return err
	}

	idgen := l.idgen
	if idgen == nil {
		idgen = target.PostgresIDGenerator{}
	}

	var fileInstanceID int64
	if l.product == target.ProductMySQL {
		// MySQL mints via LAST_INSERT_ID(), which is only meaningful
		// once the AUTO_INCREMENT insert it describes has run.
		if _, err := q.ExecContext(ctx,
			`INSERT INTO rdm_files_instance (uri, storage_class, size, checksum) VALUES ($1, $2, $3, $4)`,
			p.FileInstance.String("uri"), p.FileInstance.String("storage_class"),
			mustInt64(p.FileInstance, "size"), p.FileInstance.String("checksum"),
		); err != nil {
			return errors.Wrap(err, "insert file instance")
		}
		fileInstanceID, err = idgen.NextID(ctx, q, "")
		if err != nil {
			return errors.Wrap(err, "mint file instance id")
		}
	} else {
		fileInstanceID, err = idgen.NextID(ctx, q, "rdm_files_instance_id_seq")
		if err != nil {
			return errors.Wrap(err, "mint file instance id")
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO rdm_files_instance (id, uri, storage_class, size, checksum) VALUES ($1, $2, $3, $4, $5)`,
			fileInstanceID, p.FileInstance.String("uri"), p.FileInstance.String("storage_class"),
			mustInt64(p.FileInstance, "size"), p.FileInstance.String("checksum"),
		); err != nil {
			return errors.Wrap(err, "insert file instance")
		}
	}

	if _, err := q.ExecContext(ctx,
		`INSERT INTO rdm_record_files (record_id, "key", file_id, object_version_id, created, updated)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		draftID, p.FileRecord.Key, fileInstanceID, p.FileRecord.ObjectVersionID, p.FileRecord.Created, p.FileRecord.Updated,
	); err != nil {
		return errors.Wrap(err, "insert record-file link")
	}

	if p.ReplacedObjectVersion != nil {
		if _, err := q.ExecContext(ctx,
			`UPDATE rdm_record_files SET is_head = false WHERE record_id = $1 AND "key" = $2 AND object_version_id = $3`,
			draftID, p.FileRecord.Key, mustInt64(p.ReplacedObjectVersion, "version_id"),
		); err != nil {
			return errors.Wrap(err, "demote replaced object version")
		}
	}

	return nil
}

// DeleteLoader applies a DeletePayload: remove the record-file link for
// a hard delete, or mark it deleted for a soft delete that leaves a
// delete marker.
type DeleteLoader struct{}

// Run implements actions.Loader.
func (DeleteLoader) Run(ctx context.Context, q target.Tx, state types.StateScope, payload actions.Payload) error {
	p, ok := payload.(DeletePayload)
	if !ok {
		return errors.Errorf("files.DeleteLoader: unexpected payload type %T", payload)
	}

	bucketID := p.Bucket.String("id")
	draftID, err := lookupBucketDraft(state, bucketID)
	if err != nil {
		return err
	}

	key := p.DeletedObjectVersion.String("key")
	if p.DeleteMarkerObjectVersion != nil {
		if _, err := q.ExecContext(ctx,
			`UPDATE rdm_record_files SET is_head = false, deleted_at = now() WHERE record_id = $1 AND "key" = $2`,
			draftID, key,
		); err != nil {
			return errors.Wrap(err, "soft delete record-file link")
		}
		return nil
	}

	if _, err := q.ExecContext(ctx,
		`DELETE FROM rdm_record_files WHERE record_id = $1 AND "key" = $2`,
		draftID, key,
	); err != nil {
		return errors.Wrap(err, "hard delete record-file link")
	}
	return nil
}
