package conn

import (
	"net/url"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InMemoryPath opens a private in-memory database. Mainly for tests.
const InMemoryPath = "file::memory:?cache=shared"

// Option defines connection options for the embedded SQLite store.
type Option struct {
	// Path is the database file path, or InMemoryPath.
	Path   string
	Params map[string]string
	Config *gorm.Config
}

// Client wraps an embedded SQLite connection.
type Client struct {
	opt Option
	db  *gorm.DB
}

// New opens an SQLite database from the provided options.
func New(option Option) (*Client, error) {
	config := option.Config
	if config == nil {
		config = &gorm.Config{}
	}

	db, err := gorm.Open(sqlite.Open(option.dsn()), config)
	if err != nil {
		return nil, err
	}

	return &Client{opt: option, db: db}, nil
}

// DB returns the underlying gorm.DB instance.
func (c *Client) DB() *gorm.DB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt Option) dsn() string {
	path := opt.Path
	if path == "" {
		path = InMemoryPath
	}
	if len(opt.Params) == 0 {
		return path
	}

	query := url.Values{}
	for key, value := range opt.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}

	sep := "?"
	for i := 0; i < len(path); i++ {
		if path[i] == '?' {
			sep = "&"
			break
		}
	}
	return path + sep + query.Encode()
}
