package scenario

import (
	"context"

	"github.com/ledgerload/ledgerload/internal/ledgerload/driver"
	"github.com/ledgerload/ledgerload/internal/ledgerload/payload"
)

// clientScenario only creates clients, one per task run, without waiting for them to be listed.
func clientScenario(deps Dependencies) (driver.Definition, error) {
	ids := deps.Generator
	create := func(ctx context.Context, _ *driver.User) error {
		ts := ids.TimeStamp()
		req, err := payload.Client("LT_John "+ts, "786YYH7-"+ts, ids.DateStringNow())
		if err != nil {
			return err
		}
		_, err = deps.API.Clients.Create(ctx, req)
		return err
	}
	return driver.Definition{
		Tasks: []driver.Task{{Name: "create_client", Weight: 1, Tags: []string{TagClient}, Run: create}},
	}, nil
}
