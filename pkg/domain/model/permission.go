package model

import "strings"

// PermissionDescriptor describes one OAuth scope the connector asks for
type PermissionDescriptor struct {
	Scope       string `json:"scope"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// RequiredPermissions is the static scope catalog of the Slack connector
var RequiredPermissions = []PermissionDescriptor{
	{
		Scope:       "channels:read",
		Name:        "チャンネル情報の読み取り",
		Description: "パブリックチャンネルの一覧と基本情報を取得します",
		Required:    true,
	},
	{
		Scope:       "channels:history",
		Name:        "チャンネル履歴の読み取り",
		Description: "パブリックチャンネルのメッセージ履歴を読み取ります",
		Required:    true,
	},
	{
		Scope:       "groups:read",
		Name:        "プライベートチャンネル情報の読み取り",
		Description: "プライベートチャンネルの一覧と基本情報を取得します",
		Required:    false,
	},
	{
		Scope:       "groups:history",
		Name:        "プライベートチャンネル履歴の読み取り",
		Description: "プライベートチャンネルのメッセージ履歴を読み取ります",
		Required:    false,
	},
	{
		Scope:       "users:read",
		Name:        "ユーザー情報の読み取り",
		Description: "ワークスペースのユーザー情報を取得します",
		Required:    true,
	},
	{
		Scope:       "team:read",
		Name:        "ワークスペース情報の読み取り",
		Description: "ワークスペースの基本情報を取得します",
		Required:    true,
	},
}

// PermissionScopes joins the scopes for an OAuth request. Optional scopes are
// included only when withOptional is set.
func PermissionScopes(withOptional bool) string {
	scopes := make([]string, 0, len(RequiredPermissions))
	for _, p := range RequiredPermissions {
		if p.Required || withOptional {
			scopes = append(scopes, p.Scope)
		}
	}
	return strings.Join(scopes, ",")
}
