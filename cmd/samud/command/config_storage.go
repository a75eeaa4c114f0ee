package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/samud/internal/accounts"
	"github.com/pixil98/samud/internal/accounts/sqlite"
	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/storage"
)

type StorageConfig struct {
	Rooms    AssetConfig[*game.Room] `json:"rooms"`
	Accounts AccountsConfig          `json:"accounts"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.Accounts.validate())
	return el.Err()
}

// BuildRoomGraph loads every room and checks that all exits resolve.
func (c *StorageConfig) BuildRoomGraph(startRoom string) (*game.RoomGraph, error) {
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}

	graph, err := game.NewRoomGraph(rooms.GetAll(), startRoom)
	if err != nil {
		return nil, fmt.Errorf("building room graph: %w", err)
	}

	return graph, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

type AccountsDriver int

const (
	AccountsDriverFile AccountsDriver = iota
	AccountsDriverSqlite
)

func (d *AccountsDriver) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*d = AccountsDriverFile
	case "sqlite":
		*d = AccountsDriverSqlite
	default:
		return fmt.Errorf("unknown accounts driver: %s", text)
	}
	return nil
}

type AccountsConfig struct {
	Driver   AccountsDriver `json:"driver"`
	Path     string         `json:"path"`
	HashCost int            `json:"hash_cost"`
}

func (c *AccountsConfig) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("accounts: path is required"))
	}
	if err := accounts.ValidateHashCost(c.HashCost); err != nil {
		el.Add(fmt.Errorf("accounts: %w", err))
	}

	return el.Err()
}

func (c *AccountsConfig) BuildGateway() (accounts.Gateway, error) {
	switch c.Driver {
	case AccountsDriverFile:
		gw, err := accounts.NewFileGateway(c.Path, accounts.WithHashCost(c.HashCost))
		if err != nil {
			return nil, err
		}
		return gw, nil
	case AccountsDriverSqlite:
		gw, err := sqlite.Open(c.Path, sqlite.WithHashCost(c.HashCost))
		if err != nil {
			return nil, err
		}
		return gw, nil
	default:
		return nil, fmt.Errorf("unknown accounts driver: %v", c.Driver)
	}
}
