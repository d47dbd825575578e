/*
Package database opens gorm connections for the SQL data source and manages
their pools.

Three drivers are supported: sqlite (pure Go, github.com/glebarez/sqlite),
postgres and mysql. PoolManager wraps the gorm handle with pool tuning, Ping,
statistics and a transaction helper.
*/
package database
