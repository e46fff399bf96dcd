package source

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/agentstation/fieldeval/pkg/constants"
	"github.com/agentstation/fieldeval/pkg/errors"
	"github.com/agentstation/fieldeval/pkg/logging"
)

// accountExtensions are the account structure file types that are uploaded.
var accountExtensions = []string{".xlsx", ".csv", ".txt"}

// DiscoverAccounts lists account structure files in dir, sorted by name.
func (s *Store) DiscoverAccounts(dir string) ([]string, error) {
	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if isNotExist(err) {
			return nil, errors.NewNotFoundError("accounts directory", dir)
		}
		return nil, errors.WrapIO("list", dir, err)
	}

	var out []string
	for _, info := range infos {
		name := info.Name()
		lower := strings.ToLower(name)
		if info.IsDir() || lower == constants.InstancesFile {
			continue
		}
		for _, ext := range accountExtensions {
			if strings.HasSuffix(lower, ext) {
				out = append(out, name)
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// LookupTenant finds the tenantId for an account file in the accounts CSV,
// matching fileTypeId and account_structure_name (the file name without its
// extension).
func (s *Store) LookupTenant(csvPath, fileTypeID, accountFile string) (string, error) {
	f, err := s.Open(csvPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return "", errors.WrapParse("csv", csvPath, err)
	}
	if len(rows) == 0 {
		return "", errors.NewParseError("csv", csvPath, "missing header row", nil)
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}
	for _, name := range []string{"fileTypeId", "account_structure_name", "tenantId"} {
		if _, ok := col[name]; !ok {
			return "", errors.NewParseError("csv", csvPath, "missing column "+name, nil)
		}
	}

	account := strings.TrimSuffix(accountFile, filepath.Ext(accountFile))
	get := func(row []string, name string) string {
		if i := col[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	for _, row := range rows[1:] {
		if get(row, "fileTypeId") == fileTypeID && get(row, "account_structure_name") == account {
			if tenant := get(row, "tenantId"); tenant != "" {
				return tenant, nil
			}
		}
	}
	return "", errors.NewNotFoundError("tenant for account", fileTypeID+"/"+account)
}

// FindTenantInfo searches the JSON files of dir, in name order, for an
// object keyed by tenantID and returns its value. Unreadable files are
// skipped with a warning.
func (s *Store) FindTenantInfo(dir, tenantID string) (any, error) {
	files, err := afero.Glob(s.fs, filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, errors.WrapIO("list", dir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		var data map[string]any
		if err := s.ReadJSON(path, &data); err != nil {
			logging.Warn().Err(err).Str("file", path).Msg("Skipping unreadable tenant info file")
			continue
		}
		if info, ok := data[tenantID]; ok {
			return info, nil
		}
	}
	return nil, errors.NewNotFoundError("tenant info", tenantID)
}

func isNotExist(err error) bool {
	return os.IsNotExist(err)
}
