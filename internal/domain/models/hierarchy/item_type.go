package hierarchy

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ItemType is the closed set of node kinds in the hierarchy.
type ItemType string

const (
	ItemTypeFolder          ItemType = "Folder"
	ItemTypeWebURL          ItemType = "WebUrl"
	ItemTypeFilePath        ItemType = "FilePath"
	ItemTypeFolderPath      ItemType = "FolderPath"
	ItemTypeApplication     ItemType = "Application"
	ItemTypeWindowsStoreApp ItemType = "WindowsStoreApp"
	ItemTypeSystemLocation  ItemType = "SystemLocation"
	ItemTypeNotes           ItemType = "Notes"
	ItemTypeTerminal        ItemType = "Terminal"
)

// AllItemTypes lists every item type in display order.
var AllItemTypes = []ItemType{
	ItemTypeFolder,
	ItemTypeWebURL,
	ItemTypeFilePath,
	ItemTypeFolderPath,
	ItemTypeApplication,
	ItemTypeWindowsStoreApp,
	ItemTypeSystemLocation,
	ItemTypeNotes,
	ItemTypeTerminal,
}

// ParseItemType resolves a canonical type name (case-insensitive).
func ParseItemType(s string) (ItemType, error) {
	s = strings.TrimSpace(s)
	for _, t := range AllItemTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// IsValid reports whether t is one of the known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeFolder, ItemTypeWebURL, ItemTypeFilePath, ItemTypeFolderPath,
		ItemTypeApplication, ItemTypeWindowsStoreApp, ItemTypeSystemLocation,
		ItemTypeNotes, ItemTypeTerminal:
		return true
	}
	return false
}

// RequiresURL reports whether items of this type must carry a non-empty url.
func (t ItemType) RequiresURL() bool {
	switch t {
	case ItemTypeFolder, ItemTypeNotes, ItemTypeTerminal:
		return false
	case ItemTypeWebURL, ItemTypeFilePath, ItemTypeFolderPath,
		ItemTypeApplication, ItemTypeWindowsStoreApp, ItemTypeSystemLocation:
		return true
	}
	return false
}

// IsContainer reports whether the type is meant to hold children.
// Any item may still be used as a parent; this only drives presentation.
func (t ItemType) IsContainer() bool {
	switch t {
	case ItemTypeFolder:
		return true
	case ItemTypeWebURL, ItemTypeFilePath, ItemTypeFolderPath, ItemTypeApplication,
		ItemTypeWindowsStoreApp, ItemTypeSystemLocation, ItemTypeNotes, ItemTypeTerminal:
		return false
	}
	return false
}

// UsesCommand reports whether the type carries command/terminalType fields.
func (t ItemType) UsesCommand() bool {
	switch t {
	case ItemTypeTerminal:
		return true
	case ItemTypeFolder, ItemTypeWebURL, ItemTypeFilePath, ItemTypeFolderPath,
		ItemTypeApplication, ItemTypeWindowsStoreApp, ItemTypeSystemLocation, ItemTypeNotes:
		return false
	}
	return false
}

func (t ItemType) String() string { return string(t) }

// UnmarshalJSON accepts any casing of a canonical type name.
func (t *ItemType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseItemType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TerminalType selects the shell used by Terminal items.
type TerminalType string

const (
	TerminalCmd        TerminalType = "Cmd"
	TerminalPowerShell TerminalType = "PowerShell"
	TerminalPwsh       TerminalType = "Pwsh"
	TerminalGitBash    TerminalType = "GitBash"
	TerminalWSL        TerminalType = "WSL"
)

// AllTerminalTypes lists the supported terminal shells.
var AllTerminalTypes = []TerminalType{
	TerminalCmd,
	TerminalPowerShell,
	TerminalPwsh,
	TerminalGitBash,
	TerminalWSL,
}

// IsValid reports whether tt is a supported terminal shell.
func (tt TerminalType) IsValid() bool {
	for _, known := range AllTerminalTypes {
		if tt == known {
			return true
		}
	}
	return false
}
