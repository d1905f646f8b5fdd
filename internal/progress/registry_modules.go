package progress

import "fmt"

func exists(text string) Action {
	return Action{Kind: KindExists, Query: Query{Text: text}}
}

func viewed(module string) Action {
	return Action{
		Kind: KindViewed,
		ByBackend: map[LogBackend]Query{
			LogBackendLegacy: {Text: fmt.Sprintf("SELECT id FROM log "+
				"WHERE course = @courseid AND module = '%s' AND action = 'view' "+
				"AND cmid = @cmid AND userid = @userid", module)},
			LogBackendStandard: {Text: "SELECT id FROM logstore_standard_log " +
				"WHERE courseid = @courseid AND contextinstanceid = @cmid AND userid = @userid " +
				"AND crud = 'r' AND contextlevel = 70"},
		},
	}
}

const gradeSelect = "SELECT g.finalgrade AS finalgrade, i.gradepass AS gradepass " +
	"FROM grade_grades g JOIN grade_items i ON i.id = g.itemid "

func passed(module string) Action {
	return Action{Kind: KindGrade, Query: Query{Text: gradeSelect + fmt.Sprintf(
		"WHERE i.itemtype = 'mod' AND i.itemmodule = '%s' AND i.iteminstance = @eventid AND g.userid = @userid", module)}}
}

// passedBy only accepts grades recorded before the activity's deadline column.
func passedBy(module, deadline string) Action {
	return Action{Kind: KindGrade, Query: Query{Text: gradeSelect + fmt.Sprintf(
		"JOIN %[1]s m ON m.id = i.iteminstance "+
			"WHERE i.itemtype = 'mod' AND i.itemmodule = '%[1]s' AND i.iteminstance = @eventid AND g.userid = @userid "+
			"AND (m.%[2]s = 0 OR g.timemodified <= m.%[2]s)", module, deadline)}}
}

func marked(module string) Action {
	return exists(fmt.Sprintf("SELECT g.id FROM grade_grades g JOIN grade_items i ON i.id = g.itemid "+
		"WHERE i.itemtype = 'mod' AND i.itemmodule = '%s' AND i.iteminstance = @eventid "+
		"AND g.userid = @userid AND g.finalgrade IS NOT NULL", module))
}

func viewedOnly(module string) Descriptor {
	return Descriptor{
		Name:          module,
		Actions:       map[string]Action{ActionViewed: viewed(module)},
		DefaultAction: ActionViewed,
	}
}

func assignDescriptor() Descriptor {
	return Descriptor{
		Name:          "assign",
		DeadlineField: "duedate",
		Actions: map[string]Action{
			ActionSubmitted: exists("SELECT id FROM assign_submission " +
				"WHERE assignment = @eventid AND userid = @userid AND status = 'submitted'"),
			"marked":     marked("assign"),
			ActionPassed: passed("assign"),
		},
		DefaultAction: ActionSubmitted,
		AlternateLink: &AlternateLink{
			URLTemplate: "/mod/assign/view.php?id={cmid}&action=grading",
			Capability:  "mod/assign:grade",
		},
		ShowSubmittedFirst: true,
	}
}

func assignmentDescriptor(submittedFirst bool) Descriptor {
	return Descriptor{
		Name:          "assignment",
		DeadlineField: "timedue",
		Actions: map[string]Action{
			ActionSubmitted: exists("SELECT id FROM assignment_submissions " +
				"WHERE assignment = @eventid AND userid = @userid " +
				"AND (numfiles >= 1 OR data2 = 'submitted' OR data2 = '1' OR grade <> -1)"),
			"marked": exists("SELECT id FROM assignment_submissions " +
				"WHERE assignment = @eventid AND userid = @userid AND grade <> -1"),
			ActionPassed: passed("assignment"),
		},
		DefaultAction: ActionSubmitted,
		AlternateLink: &AlternateLink{
			URLTemplate: "/mod/assignment/submissions.php?id={cmid}",
			Capability:  "mod/assignment:grade",
		},
		ShowSubmittedFirst: submittedFirst,
	}
}

func sharedDescriptors() []Descriptor {
	return []Descriptor{
		viewedOnly("book"),
		{
			Name: "certificate",
			Actions: map[string]Action{
				"awarded": exists("SELECT id FROM certificate_issues WHERE certificateid = @eventid AND userid = @userid"),
			},
			DefaultAction: "awarded",
		},
		{
			Name: "chat",
			Actions: map[string]Action{
				"posted_to": exists("SELECT id FROM chat_messages WHERE chatid = @eventid AND userid = @userid"),
			},
			DefaultAction: "posted_to",
		},
		{
			Name:          "choice",
			DeadlineField: "timeclose",
			Actions: map[string]Action{
				"answered": exists("SELECT id FROM choice_answers WHERE choiceid = @eventid AND userid = @userid"),
			},
			DefaultAction: "answered",
		},
		{
			Name:          "data",
			DeadlineField: "timeviewto",
			Actions: map[string]Action{
				ActionViewed: viewed("data"),
				"posted_to":  exists("SELECT id FROM data_records WHERE dataid = @eventid AND userid = @userid"),
			},
			DefaultAction: ActionViewed,
		},
		{
			Name:          "feedback",
			DeadlineField: "timeclose",
			Actions: map[string]Action{
				"responded_to": exists("SELECT id FROM feedback_completed WHERE feedback = @eventid AND userid = @userid"),
			},
			DefaultAction: "responded_to",
		},
		viewedOnly("flashcardtrainer"),
		viewedOnly("folder"),
		{
			Name:          "forum",
			DeadlineField: "assesstimefinish",
			Actions: map[string]Action{
				"posted_to": exists("SELECT id FROM forum_posts WHERE userid = @userid AND discussion IN " +
					"(SELECT id FROM forum_discussions WHERE forum = @eventid)"),
			},
			DefaultAction: "posted_to",
		},
		{
			Name: "glossary",
			Actions: map[string]Action{
				ActionViewed: viewed("glossary"),
				"posted_to":  exists("SELECT id FROM glossary_entries WHERE glossaryid = @eventid AND userid = @userid"),
			},
			DefaultAction: ActionViewed,
		},
		{
			Name:          "hotpot",
			DeadlineField: "timeclose",
			Actions: map[string]Action{
				"attempted": exists("SELECT id FROM hotpot_attempts WHERE hotpot = @eventid AND userid = @userid"),
				"finished": exists("SELECT id FROM hotpot_attempts " +
					"WHERE hotpot = @eventid AND userid = @userid AND timefinish <> 0"),
			},
			DefaultAction: "finished",
		},
		viewedOnly("imscp"),
		{
			Name: "journal",
			Actions: map[string]Action{
				"posted_to": exists("SELECT id FROM journal_entries WHERE journal = @eventid AND userid = @userid"),
			},
			DefaultAction: "posted_to",
		},
		{
			Name:          "lesson",
			DeadlineField: "deadline",
			Actions: map[string]Action{
				"attempted":  exists("SELECT id FROM lesson_attempts WHERE lessonid = @eventid AND userid = @userid"),
				"graded":     exists("SELECT id FROM lesson_grades WHERE lessonid = @eventid AND userid = @userid"),
				ActionPassed: passed("lesson"),
			},
			DefaultAction: "attempted",
		},
		viewedOnly("page"),
		{
			Name:          "quiz",
			DeadlineField: "timeclose",
			Actions: map[string]Action{
				"attempted": exists("SELECT id FROM quiz_attempts WHERE quiz = @eventid AND userid = @userid"),
				"finished": exists("SELECT id FROM quiz_attempts " +
					"WHERE quiz = @eventid AND userid = @userid AND timefinish <> 0"),
				ActionSubmitted: exists("SELECT id FROM quiz_attempts " +
					"WHERE quiz = @eventid AND userid = @userid AND timefinish <> 0"),
				"graded":       exists("SELECT id FROM quiz_grades WHERE quiz = @eventid AND userid = @userid"),
				ActionPassed:   passed("quiz"),
				ActionPassedBy: passedBy("quiz", "timeclose"),
			},
			DefaultAction: "finished",
			AlternateLink: &AlternateLink{
				URLTemplate: "/mod/quiz/report.php?id={cmid}",
				Capability:  "mod/quiz:viewreports",
			},
			ShowSubmittedFirst: true,
		},
		viewedOnly("resource"),
		{
			Name: "scorm",
			Actions: map[string]Action{
				"attempted": exists("SELECT id FROM scorm_scoes_track WHERE scormid = @eventid AND userid = @userid"),
				"completed": exists("SELECT id FROM scorm_scoes_track " +
					"WHERE scormid = @eventid AND userid = @userid " +
					"AND element = 'cmi.core.lesson_status' AND value IN ('completed', 'passed')"),
				ActionPassed: passed("scorm"),
			},
			DefaultAction: "attempted",
		},
		viewedOnly("url"),
		viewedOnly("wiki"),
	}
}

// currentDescriptors is the table for platform 2.3 and later, where the
// assign module replaces assignment as the submitted-first type.
func currentDescriptors() []Descriptor {
	descriptors := []Descriptor{assignDescriptor(), assignmentDescriptor(false)}
	return append(descriptors, sharedDescriptors()...)
}

func legacyDescriptors() []Descriptor {
	descriptors := []Descriptor{assignmentDescriptor(true)}
	return append(descriptors, sharedDescriptors()...)
}
