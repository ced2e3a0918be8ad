package navigation

import (
	"strings"

	"umuhinzilink/internal/domain/model"
)

type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionProducts  Section = "products"
	SectionOrders    Section = "orders"
	SectionSuppliers Section = "suppliers"
	SectionMessages  Section = "messages"
	SectionUsers     Section = "users"
	SectionReports   Section = "reports"
	SectionAudit     Section = "audit"
	SectionProfile   Section = "profile"
)

// Itemはサイドメニュー1項目
type Item struct {
	Section Section `json:"section"`
	Label   string  `json:"label"`
	Path    string  `json:"path"`
}

type entry struct {
	section Section
	label   string
	labels  map[model.Role]string // ロールごとの表示名
	roles   []model.Role
}

var (
	everyone = []model.Role{model.RoleFarmer, model.RoleSupplier, model.RoleBuyer, model.RoleAdmin, model.RoleGovernment}
	traders  = []model.Role{model.RoleFarmer, model.RoleSupplier, model.RoleBuyer}
)

// ロールごとの画面はこの1本の表から作る
var tree = []entry{
	{section: SectionDashboard, label: "Dashboard", roles: everyone},
	{section: SectionProducts, label: "Products", roles: everyone, labels: map[model.Role]string{
		model.RoleFarmer:   "My Produce",
		model.RoleSupplier: "My Products",
		model.RoleBuyer:    "Marketplace",
	}},
	{section: SectionOrders, label: "Orders", roles: everyone, labels: map[model.Role]string{
		model.RoleBuyer: "My Orders",
	}},
	{section: SectionSuppliers, label: "Suppliers", roles: []model.Role{model.RoleFarmer, model.RoleSupplier, model.RoleBuyer, model.RoleAdmin}},
	{section: SectionMessages, label: "Messages", roles: traders},
	{section: SectionUsers, label: "Users", roles: []model.Role{model.RoleAdmin}},
	{section: SectionReports, label: "Reports", roles: []model.Role{model.RoleAdmin, model.RoleGovernment}},
	{section: SectionAudit, label: "Audit Logs", roles: []model.Role{model.RoleAdmin}},
	{section: SectionProfile, label: "Profile", roles: everyone},
}

// MenuForはそのロールのメニュー
func MenuFor(role model.Role) []Item {
	var out []Item
	for _, e := range tree {
		if !has(e.roles, role) {
			continue
		}
		out = append(out, Item{Section: e.section, Label: e.labelFor(role), Path: PathFor(role, e.section)})
	}
	return out
}

// RolesForはその画面を見られるロール。ルート登録のガードに使う。
func RolesFor(section Section) []model.Role {
	for _, e := range tree {
		if e.section == section {
			out := make([]model.Role, len(e.roles))
			copy(out, e.roles)
			return out
		}
	}
	return nil
}

func Allowed(role model.Role, section Section) bool {
	return has(RolesFor(section), role)
}

// PathForは正規のパス /dashboard/{role}/{section}
func PathFor(role model.Role, section Section) string {
	p := "/dashboard/" + strings.ToLower(string(role))
	if section == SectionDashboard {
		return p
	}
	return p + "/" + string(section)
}

// Resolveは古いパス（/admin/orders, /dashboard/admin/orders, /adminorders など）を
// 正規のパスに読み替える。知らない形や許可されていない組み合わせはfalse。
func Resolve(path string) (model.Role, Item, bool) {
	segs := strings.FieldsFunc(strings.ToLower(path), func(r rune) bool { return r == '/' })
	if len(segs) > 0 && segs[0] == "dashboard" {
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return "", Item{}, false
	}

	role, rest, ok := splitRole(segs[0])
	if !ok {
		return "", Item{}, false
	}
	section := SectionDashboard
	switch {
	case rest != "":
		section = Section(rest)
	case len(segs) > 1:
		section = Section(segs[1])
	}

	for _, e := range tree {
		if e.section == section && has(e.roles, role) {
			return role, Item{Section: section, Label: e.labelFor(role), Path: PathFor(role, section)}, true
		}
	}
	return "", Item{}, false
}

// "admin" → ADMIN, "adminorders" → ADMIN + "orders"
func splitRole(seg string) (model.Role, string, bool) {
	for _, r := range everyone {
		name := strings.ToLower(string(r))
		if strings.HasPrefix(seg, name) {
			return r, seg[len(name):], true
		}
	}
	return "", "", false
}

func (e entry) labelFor(role model.Role) string {
	if l, ok := e.labels[role]; ok {
		return l
	}
	return e.label
}

func has(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
