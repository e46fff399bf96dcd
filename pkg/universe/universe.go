// Package universe resolves the set of fields scored in a reconciliation run.
package universe

import (
	"strings"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/record"
)

// defaultIgnored lists administrative and bookkeeping fields that are never
// scored: identifiers, scheduling, notification settings and source markers.
var defaultIgnored = []string{
	"filedestination", "filename", "lookback", "integrationmode",
	"notificationemailaddress", "notificationstart", "notificationwarning",
	"notificationfailure", "notificationsuccess", "notificationcreateticket",
	"requiresfileinput", "eventinginfo", "eventbasedtriggers",
	"publishingconfiguration", "integrationid", "tenantid", "integrationname",
	"vendor", "filetypeid", "customername", "createddate", "updateddate",
	"deleted", "runtype", "runautomatically", "cron", "_source_file",
	"_tenant_id", "ui_statusmap", "globaltenantid",
}

// DefaultIgnored returns a fresh copy of the default ignored-field set.
func DefaultIgnored() record.FieldSet {
	return record.NewFieldSet(defaultIgnored...)
}

// Resolve returns catalogue ∪ reference keys ∪ every candidate's keys, minus
// ignored, sorted lexicographically. The ignore set is applied after the
// union so an ignored catalogue field never appears.
func Resolve(catalogue record.FieldSet, reference *record.Record, candidates []*record.Record, ignored record.FieldSet) []record.FieldName {
	all := make(record.FieldSet, len(catalogue)+reference.Len())
	for f := range catalogue {
		all.Add(f)
	}
	for _, f := range reference.Keys() {
		all.Add(f)
	}
	for _, c := range candidates {
		for _, f := range c.Keys() {
			all.Add(f)
		}
	}

	for f := range all {
		if ignored.Has(f) {
			delete(all, f)
		}
	}
	return all.Sorted()
}

// CatalogueFromInstances collects every field name known across a list of
// raw instance records: their top-level keys plus the keys of each embedded
// {key, value} list entry.
func CatalogueFromInstances(instances []map[string]any) record.FieldSet {
	cat := make(record.FieldSet)
	for _, inst := range instances {
		for k, v := range inst {
			if strings.ToLower(k) != constants.EmbeddedListKey {
				cat.Add(record.Name(k))
				continue
			}
			list, _ := v.([]any)
			for _, item := range list {
				entry, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if key, ok := entry["key"].(string); ok && key != "" {
					cat.Add(record.Name(key))
				}
			}
		}
	}
	return cat
}
