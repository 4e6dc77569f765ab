package user

import "fmt"

// workset stages the changes of one mutation over a copy of the whole table,
// so that every related record is written in one ChangeSet or not at all.
type workset struct {
	users   map[string]User
	created []string
	updated []string
	deleted []string
	touched map[string]bool
}

func newWorkset(users []User) *workset {
	ws := &workset{
		users:   make(map[string]User, len(users)),
		touched: make(map[string]bool),
	}
	for _, u := range users {
		ws.users[u.ID] = u
	}
	return ws
}

func (ws *workset) get(id string) (User, bool) {
	if id == "" {
		return User{}, false
	}
	u, ok := ws.users[id]
	return u, ok
}

func (ws *workset) create(u User) {
	ws.users[u.ID] = u
	ws.created = append(ws.created, u.ID)
	ws.touched[u.ID] = true
}

func (ws *workset) put(u User) {
	ws.users[u.ID] = u
	if !ws.touched[u.ID] {
		ws.touched[u.ID] = true
		ws.updated = append(ws.updated, u.ID)
	}
}

func (ws *workset) remove(id string) {
	delete(ws.users, id)
	ws.deleted = append(ws.deleted, id)
}

func (ws *workset) changeSet() ChangeSet {
	var cs ChangeSet
	isDeleted := make(map[string]bool, len(ws.deleted))
	for _, id := range ws.deleted {
		isDeleted[id] = true
	}
	isCreated := make(map[string]bool, len(ws.created))
	for _, id := range ws.created {
		isCreated[id] = true
		cs.Create = append(cs.Create, ws.users[id].Clone())
	}
	for _, id := range ws.updated {
		if !isDeleted[id] && !isCreated[id] {
			cs.Update = append(cs.Update, ws.users[id].Clone())
		}
	}
	cs.Delete = append(cs.Delete, ws.deleted...)
	return cs
}

// setParent points student at parentID ("" to clear).
func (ws *workset) setParent(studentID, parentID string) {
	s, ok := ws.get(studentID)
	if !ok {
		return
	}
	p, ok := s.Profile.(StudentProfile)
	if !ok || p.ParentID == parentID {
		return
	}
	p.ParentID = parentID
	s.Profile = p
	ws.put(s)
}

func (ws *workset) addChild(parentID, childID string) {
	par, ok := ws.get(parentID)
	if !ok {
		return
	}
	p, ok := par.Profile.(ParentProfile)
	if !ok || containsID(p.ChildrenIDs, childID) {
		return
	}
	p.ChildrenIDs = append(append([]string{}, p.ChildrenIDs...), childID)
	par.Profile = p
	ws.put(par)
}

func (ws *workset) removeChild(parentID, childID string) {
	par, ok := ws.get(parentID)
	if !ok {
		return
	}
	p, ok := par.Profile.(ParentProfile)
	if !ok || !containsID(p.ChildrenIDs, childID) {
		return
	}
	p.ChildrenIDs = removeID(p.ChildrenIDs, childID)
	par.Profile = p
	ws.put(par)
}

// unlink drops the parent/child relations orig held that next no longer holds.
// next is the zero User when orig is being deleted.
func (ws *workset) unlink(orig, next User) {
	switch p := orig.Profile.(type) {
	case StudentProfile:
		if p.ParentID != "" && next.ParentID() != p.ParentID {
			ws.removeChild(p.ParentID, orig.ID)
		}
	case ParentProfile:
		keep := next.ChildrenIDs()
		for _, childID := range p.ChildrenIDs {
			if containsID(keep, childID) {
				continue
			}
			if child, ok := ws.get(childID); ok && child.ParentID() == orig.ID {
				ws.setParent(childID, "")
			}
		}
	case AdminProfile, TeacherProfile, nil:
		// no parent/child relations; teacher assignments are left as they are
	}
}

// link makes the other side of usr's parent/child relations point back at usr.
// usr must already be staged in the workset.
func (ws *workset) link(usr User) {
	switch p := usr.Profile.(type) {
	case StudentProfile:
		if p.ParentID != "" {
			ws.addChild(p.ParentID, usr.ID)
		}
	case ParentProfile:
		for _, childID := range p.ChildrenIDs {
			child, ok := ws.get(childID)
			if !ok {
				continue
			}
			if prev := child.ParentID(); prev != "" && prev != usr.ID {
				ws.removeChild(prev, childID)
			}
			ws.setParent(childID, usr.ID)
		}
	case AdminProfile, TeacherProfile, nil:
	}
}

// CheckSymmetry returns an error describing the first broken parent/child link in users.
func CheckSymmetry(users []User) error {
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, u := range users {
		switch p := u.Profile.(type) {
		case StudentProfile:
			if p.ParentID == "" {
				continue
			}
			par, ok := byID[p.ParentID]
			if !ok || !containsID(par.ChildrenIDs(), u.ID) {
				return fmt.Errorf("student %s points at parent %s which does not list it", u.ID, p.ParentID)
			}
		case ParentProfile:
			for _, childID := range p.ChildrenIDs {
				child, ok := byID[childID]
				if !ok || child.ParentID() != u.ID {
					return fmt.Errorf("parent %s lists child %s which does not point back", u.ID, childID)
				}
			}
		}
	}
	return nil
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	res := make([]string, 0, len(ids))
	for _, i := range ids {
		if i != id {
			res = append(res, i)
		}
	}
	return res
}

// uniqueIDs returns a copy of ids without blanks and duplicates, in order.
func uniqueIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	return res
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
