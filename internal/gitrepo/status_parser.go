package gitrepo

import (
	"fmt"
	"strings"
)

const (
	porcelainRecordSeparatorConstant      = "\x00"
	porcelainFieldSeparatorConstant       = " "
	porcelainOrdinaryFieldCountConstant   = 9
	porcelainRenamedFieldCountConstant    = 10
	porcelainUnmergedFieldCountConstant   = 11
	malformedStatusRecordTemplateConstant = "malformed status record %q"
)

// ParsePorcelainStatus converts `git status --porcelain=v2 -z` output into status entries.
func ParsePorcelainStatus(output string) ([]StatusEntry, error) {
	records := strings.Split(output, porcelainRecordSeparatorConstant)
	entries := make([]StatusEntry, 0, len(records))

	for recordIndex := 0; recordIndex < len(records); recordIndex++ {
		record := records[recordIndex]
		if len(record) == 0 {
			continue
		}

		switch record[0] {
		case '#', '!':
			continue
		case '?':
			entries = append(entries, StatusEntry{Path: strings.TrimPrefix(record[1:], porcelainFieldSeparatorConstant), Flags: StatusWorktreeNew})
		case '1':
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainOrdinaryFieldCountConstant)
			if len(fields) != porcelainOrdinaryFieldCountConstant || len(fields[1]) != 2 {
				return nil, fmt.Errorf(malformedStatusRecordTemplateConstant, record)
			}
			entries = append(entries, StatusEntry{Path: fields[porcelainOrdinaryFieldCountConstant-1], Flags: classifyChange(fields[1][0], fields[1][1])})
		case '2':
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainRenamedFieldCountConstant)
			if len(fields) != porcelainRenamedFieldCountConstant || len(fields[1]) != 2 {
				return nil, fmt.Errorf(malformedStatusRecordTemplateConstant, record)
			}
			entries = append(entries, StatusEntry{Path: fields[porcelainRenamedFieldCountConstant-1], Flags: classifyChange(fields[1][0], fields[1][1])})
			// the original path of a rename or copy follows as its own record
			recordIndex++
		case 'u':
			fields := strings.SplitN(record, porcelainFieldSeparatorConstant, porcelainUnmergedFieldCountConstant)
			if len(fields) != porcelainUnmergedFieldCountConstant {
				return nil, fmt.Errorf(malformedStatusRecordTemplateConstant, record)
			}
			entries = append(entries, StatusEntry{Path: fields[porcelainUnmergedFieldCountConstant-1], Flags: StatusConflicted})
		default:
			return nil, fmt.Errorf(malformedStatusRecordTemplateConstant, record)
		}
	}

	return entries, nil
}

func classifyChange(indexCode byte, worktreeCode byte) StatusFlag {
	var flags StatusFlag

	switch indexCode {
	case 'M', 'T', 'R', 'C':
		flags |= StatusIndexModified
	case 'A':
		flags |= StatusIndexNew
	case 'D':
		flags |= StatusIndexDeleted
	}

	switch worktreeCode {
	case 'M', 'T':
		flags |= StatusWorktreeModified
	case 'D':
		flags |= StatusWorktreeDeleted
	case 'A':
		// intent-to-add entries show up as additions in the worktree column
		flags |= StatusWorktreeNew
	}

	return flags
}
