/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package execsrc

import (
	"context"
	"fmt"
	"strings"

	libgorm "github.com/nabbar/statcollect/database/gorm"

	liberr "github.com/nabbar/statcollect/errors"
)

// Error codes for the MySQL source variant.
const (
	ErrorMySQLConfig liberr.CodeError = iota + liberr.MinPkgSource + 30
	ErrorMySQLQuery
	ErrorMySQLScan
)

// MySQLConfig describes one MySQL "SHOW GLOBAL STATUS"-style source,
// opened through the database/gorm connection wrapper rather than
// driving database/sql directly.
type MySQLConfig struct {
	DSN            string
	Name           string
	PoolMaxIdle    int
	PoolMaxOpen    int
	Query          string // defaults to "SHOW GLOBAL STATUS"
	VariableColumn string // column holding the metric name, defaults to "Variable_name"
	ValueColumn    string // column holding the metric value, defaults to "Value"
}

// MySQLSource runs a status-style query on every fetch and renders the
// two-column result as "key value" text lines, so it can be handed to
// the textsimple parser unchanged.
type MySQLSource struct {
	cfg MySQLConfig
	url string
	db  libgorm.Database
}

// NewMySQL opens (lazily, on first Fetch) a pooled connection through
// libgorm.New, mirroring the usage shown in database/gorm's own package
// documentation.
func NewMySQL(cfg MySQLConfig, url string) (*MySQLSource, error) {
	if cfg.DSN == "" {
		return nil, ErrorMySQLConfig.Error(nil)
	}
	if cfg.Query == "" {
		cfg.Query = "SHOW GLOBAL STATUS"
	}
	if cfg.VariableColumn == "" {
		cfg.VariableColumn = "Variable_name"
	}
	if cfg.ValueColumn == "" {
		cfg.ValueColumn = "Value"
	}

	gcfg := &libgorm.Config{
		Driver:               libgorm.DriverMysql,
		Name:                 cfg.Name,
		DSN:                  cfg.DSN,
		EnableConnectionPool: true,
		PoolMaxIdleConns:     cfg.PoolMaxIdle,
		PoolMaxOpenConns:     cfg.PoolMaxOpen,
	}
	db, err := libgorm.New(gcfg)
	if err != nil {
		return nil, ErrorMySQLConfig.Error(err)
	}

	return &MySQLSource{cfg: cfg, url: url, db: db}, nil
}

func (s *MySQLSource) Driver() string { return "mysql" }
func (s *MySQLSource) URL() string    { return s.url }

// Fetch runs the configured status query and renders each row as
// "name value\n", matching textsimple's key/value line format.
func (s *MySQLSource) Fetch(ctx context.Context) ([]byte, error) {
	gormDB := s.db.GetDB().WithContext(ctx)

	rows, err := gormDB.Raw(s.cfg.Query).Rows()
	if err != nil {
		return nil, ErrorMySQLQuery.Error(err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, ErrorMySQLScan.Error(err)
		}
		fmt.Fprintf(&b, "%s %s\n", name, value)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrorMySQLQuery.Error(err)
	}

	return []byte(b.String()), nil
}

// Close releases the pooled connection.
func (s *MySQLSource) Close() {
	s.db.Close()
}
