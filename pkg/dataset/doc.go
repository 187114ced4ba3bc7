// Package dataset loads and prepares the clinical participants table that
// feeds the flow diagram.
//
// # Overview
//
// The raw input is a CSV export with one row per patient. Preparation runs
// in three steps, each a pure transformation producing a new [Table]:
//
//  1. [ReadCSV] / [LoadCSV]: read the rectangular table (header row required)
//  2. [Clean]: keep the relevant columns, rename them, and reduce the
//     therapy list to its first entry
//  3. [BucketAges]: replace numeric ages with quartile-based age ranges
//
// [Load] runs all three and returns a [Dataset] that also keeps the age
// thresholds and the raw ages for summaries.
//
// # Age Buckets
//
// Quartile thresholds are computed once per load by [ComputeAgeBuckets] and
// passed explicitly as an [AgeBuckets] value. [AgeBuckets.Classify] is a pure
// function of the thresholds and the age, so the same value can classify any
// number of tables.
//
// # Concurrency
//
// A [Table] is treated as read-only once built. Methods that narrow a table
// ([Table.Filter], [Table.Select]) return new tables that share row storage
// with the original, so a single loaded table can be shared freely between
// concurrent dashboard requests.
package dataset
