package eto

// Package eto bundles two tools for an engineer-to-order manufacturer.
//
// Overview
//
// 1. repo-cloner
//
// Searches GitHub for repositories matching a query, scores each against a
// set of industry keywords, filters by a minimum relevance, clones the top
// candidates and exports the results as JSON or CSV.
//
// Search goes through a fallback chain.  With a token configured the chain
// starts live; any live failure degrades it to generated sample candidates
// for the rest of the invocation.  Without a token it starts synthetic.
//
//     repo-cloner -c config.yaml --search-only --export-format csv
//
// Runs can be recorded in a bolt ledger and reviewed later:
//
//     repo-cloner --ledger runs.bolt history -n 5
//
// 2. eto-dashboard
//
// Serves project, resource, inventory and KPI charts from PostgreSQL, or
// from generated sample data when no database is reachable.
//
// * Seed a database: eto-dashboard seed --database-url postgres://...
// * Run the web server: eto-dashboard web -a 127.0.0.1:8050
// * Install as a system service: eto-dashboard service install -u someuser
//
