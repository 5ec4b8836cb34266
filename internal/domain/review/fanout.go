package review

// planFanOut turns department rosters into the concrete set of reviews a
// cycle generates: one review of each department head (performed by the HR
// admin, on the dept-head template) and one review of each staff member
// (performed by their department head, on the staff template). Departments
// without a head stay linked to the cycle but produce no reviews.
func planFanOut(hrAdminID int64, input CycleInput, rosters []DepartmentRoster) []ReviewSpec {
	var specs []ReviewSpec
	for _, roster := range rosters {
		if roster.HeadUserID == nil {
			continue
		}
		head := *roster.HeadUserID

		specs = append(specs, ReviewSpec{
			RevieweeID: head,
			ReviewerID: hrAdminID,
			TemplateID: input.DeptHeadTemplateID,
		})
		for _, staffID := range roster.StaffIDs {
			specs = append(specs, ReviewSpec{
				RevieweeID: staffID,
				ReviewerID: head,
				TemplateID: input.StaffTemplateID,
			})
		}
	}
	return specs
}
