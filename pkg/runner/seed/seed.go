package seed

import (
	"context"
	"errors"
	"fmt"

	"alarmdeck/pkg/localhub"
)

type Seed struct {
	Hub *localhub.Hub
}

func (n *Seed) Do(ctx context.Context) error {
	if n.Hub == nil {
		return errors.New("can not seed, no hub")
	}
	if err := n.Hub.Seed(ctx); err != nil {
		return err
	}
	fmt.Println("seeded demo alarms")
	return nil
}
