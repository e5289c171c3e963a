package resolver

import (
	"context"

	"xdao.co/revstore/element"
	"xdao.co/revstore/ident"
	"xdao.co/revstore/storage"
	"xdao.co/revstore/validate"
)

// Hydrate fills the elements a package omits from a local store, the way a
// client completes an incremental transfer from its cache.
//
// It repeats the completeness walk, fetching every missing element, until the
// package is self-contained or the store has nothing more to offer. The
// returned package is new; pkg is not modified. The returned ids are the
// elements still missing, ready for a follow-up fetch. Store misses are not
// errors; any other store failure is returned as is.
func Hydrate(ctx context.Context, pkg *element.Package, storageIndexID ident.ExGuid, s storage.Store, opts Options) (*element.Package, []ident.ExGuid, error) {
	opts = opts.withDefaults()
	tried := map[ident.ExGuid]bool{}
	cur := pkg

	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		rep, err := validate.Completeness(cur, storageIndexID)
		if err != nil {
			return nil, nil, err
		}
		if rep.Complete() {
			return cur, nil, nil
		}

		var fetched []element.DataElement
		var missing []ident.ExGuid
		for _, m := range rep.Missing {
			if tried[m.ID] {
				missing = append(missing, m.ID)
				continue
			}
			tried[m.ID] = true
			e, err := s.Get(m.ID)
			if storage.IsNotFound(err) {
				missing = append(missing, m.ID)
				continue
			}
			if err != nil {
				return nil, nil, err
			}
			fetched = append(fetched, e)
		}

		opts.Logger.Debug("hydrate round",
			"storage_index", storageIndexID,
			"round", round,
			"fetched", len(fetched),
			"missing", len(missing))

		if len(fetched) == 0 {
			return cur, missing, nil
		}
		cur, err = cur.With(fetched...)
		if err != nil {
			return nil, nil, err
		}
	}
}
