package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/supporthub/support-dashboard/internal/api/dto"
	"github.com/supporthub/support-dashboard/internal/domain"
	"github.com/supporthub/support-dashboard/internal/knowledge"
	"github.com/supporthub/support-dashboard/internal/livestore"
)

const previewLength = 160

type knowledgePane struct {
	articles *livestore.Collection[domain.Article]
	loaded   bool

	search    textinput.Model
	searching bool
	category  string
	cursor    int

	form     articleForm
	formOpen bool
	creating bool
}

func newKnowledgePane() knowledgePane {
	search := textinput.New()
	search.Placeholder = "Search articles..."
	search.Prompt = "/ "
	return knowledgePane{
		articles: livestore.NewArticles(),
		search:   search,
		category: knowledge.AllCategories,
		form:     newArticleForm(),
	}
}

func (k *knowledgePane) resize(width int) {
	k.search.Width = max(width/3, 20)
	k.form.resize(width)
}

// categories is "all" followed by the categories present in the fetched articles.
func (k *knowledgePane) categories() []string {
	return append([]string{knowledge.AllCategories}, knowledge.Categories(k.articles.Items())...)
}

func (k *knowledgePane) visible() []domain.Article {
	return knowledge.Filter(k.articles.Items(), k.search.Value(), k.category)
}

func (k *knowledgePane) clampCursor() {
	if n := len(k.visible()); k.cursor >= n {
		k.cursor = max(n-1, 0)
	}
}

// Form fields in focus order.
const (
	fieldTitle = iota
	fieldCategory
	fieldTags
	fieldContent
	fieldCount
)

type articleForm struct {
	title    textinput.Model
	category textinput.Model
	tags     textinput.Model
	content  textarea.Model
	focus    int
}

func newArticleForm() articleForm {
	title := textinput.New()
	title.Placeholder = "Article title"
	title.Prompt = ""

	category := textinput.New()
	category.Placeholder = "e.g. billing, technical"
	category.Prompt = ""

	tags := textinput.New()
	tags.Placeholder = "Comma separated tags"
	tags.Prompt = ""

	content := textarea.New()
	content.Placeholder = "Article content (markdown)"
	content.ShowLineNumbers = false
	content.SetHeight(6)
	content.CharLimit = 0

	return articleForm{title: title, category: category, tags: tags, content: content}
}

func (f *articleForm) resize(width int) {
	w := max(width-8, 20)
	f.title.Width = w
	f.category.Width = w
	f.tags.Width = w
	f.content.SetWidth(w)
}

func (f *articleForm) draft() knowledge.Draft {
	return knowledge.Draft{
		Title:    f.title.Value(),
		Content:  f.content.Value(),
		Category: f.category.Value(),
		Tags:     f.tags.Value(),
	}
}

func (f *articleForm) reset() {
	f.title.Reset()
	f.category.Reset()
	f.tags.Reset()
	f.content.Reset()
	f.focus = fieldTitle
	f.blur()
}

// setFocus focuses field i and blurs the rest.
func (f *articleForm) setFocus(i int) tea.Cmd {
	f.focus = (i%fieldCount + fieldCount) % fieldCount
	f.blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldCategory:
		return f.category.Focus()
	case fieldTags:
		return f.tags.Focus()
	default:
		return f.content.Focus()
	}
}

func (f *articleForm) blur() {
	f.title.Blur()
	f.category.Blur()
	f.tags.Blur()
	f.content.Blur()
}

func (f *articleForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldCategory:
		f.category, cmd = f.category.Update(msg)
	case fieldTags:
		f.tags, cmd = f.tags.Update(msg)
	default:
		f.content, cmd = f.content.Update(msg)
	}
	return cmd
}

func (model Model) handleKnowledgeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := &model.knowledge
	switch {
	case key.Matches(message, model.keys.Search):
		k.searching = true
		cmd := k.search.Focus()
		return model, cmd
	case key.Matches(message, model.keys.NextCategory):
		categories := k.categories()
		i := slices.Index(categories, k.category)
		k.category = categories[(i+1)%len(categories)]
		k.cursor = 0
	case key.Matches(message, model.keys.Up):
		if k.cursor > 0 {
			k.cursor--
		}
	case key.Matches(message, model.keys.Down):
		if k.cursor < len(k.visible())-1 {
			k.cursor++
		}
	case key.Matches(message, model.keys.NewArticle):
		k.formOpen = true
		cmd := k.form.setFocus(fieldTitle)
		return model, cmd
	case key.Matches(message, model.keys.Back):
		if k.search.Value() != "" || k.category != knowledge.AllCategories {
			k.search.Reset()
			k.category = knowledge.AllCategories
			k.cursor = 0
			return model, nil
		}
		return model.leaveDashboard()
	}
	return model, nil
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := &model.knowledge
	if key.Matches(message, model.keys.Back) || message.Type == tea.KeyEnter {
		k.searching = false
		k.search.Blur()
		return model, nil
	}
	var cmd tea.Cmd
	k.search, cmd = k.search.Update(message)
	k.cursor = 0
	return model, cmd
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := &model.knowledge
	switch {
	case key.Matches(message, model.keys.Back):
		k.formOpen = false
		k.form.blur()
		return model, nil
	case key.Matches(message, model.keys.NextField):
		cmd := k.form.setFocus(k.form.focus + 1)
		return model, cmd
	case message.String() == "shift+tab":
		cmd := k.form.setFocus(k.form.focus - 1)
		return model, cmd
	case key.Matches(message, model.keys.Send):
		draft := k.form.draft()
		if !draft.Ready() || k.creating {
			return model, nil
		}
		k.creating = true
		return model, createArticle(model.ctx, model.backend, dto.CreateArticleRequest{
			Title:    strings.TrimSpace(draft.Title),
			Content:  draft.Content,
			Category: strings.TrimSpace(draft.Category),
			Tags:     knowledge.ParseTags(draft.Tags),
		})
	}
	cmd := k.form.update(message)
	return model, cmd
}

func (model Model) handleArticlesLoaded(msg articlesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := model.fail("fetch knowledge base articles", msg.err)
		return model, cmd
	}
	model.knowledge.loaded = true
	model.knowledge.articles.Reset(msg.articles)
	model.knowledge.clampCursor()
	return model, nil
}

func (model Model) handleArticleCreated(msg articleCreatedMsg) (tea.Model, tea.Cmd) {
	model.knowledge.creating = false
	if msg.err != nil {
		cmd := model.fail("create article", msg.err)
		return model, cmd
	}
	model.knowledge.articles.Upsert(*msg.article)
	model.knowledge.form.reset()
	model.knowledge.formOpen = false
	cmd := model.notify("Success", "Knowledge base article created successfully", false)
	return model, cmd
}

func (model Model) renderKnowledge() string {
	k := model.knowledge
	if k.formOpen {
		return model.renderArticleForm()
	}

	var b strings.Builder
	b.WriteString(model.theme.Title.Render("Knowledge Base") + "\n\n")
	b.WriteString(k.search.View() + "\n\n")

	cats := k.categories()
	tabs := make([]string, 0, len(cats))
	for _, c := range cats {
		if c == k.category {
			tabs = append(tabs, model.theme.TabOn.Render(c))
		} else {
			tabs = append(tabs, model.theme.Tab.Render(c))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n")

	articles := k.visible()
	if !k.loaded {
		b.WriteString(model.theme.Muted.Render("Loading articles..."))
		return b.String()
	}
	if len(articles) == 0 {
		b.WriteString(model.theme.Muted.Render("No articles found"))
		return b.String()
	}

	width := max(model.width-4, 30)
	for i, article := range articles {
		title := truncate(article.Title, width-2)
		if i == k.cursor {
			title = model.theme.Selected.Render(title)
		} else {
			title = model.theme.Title.Render(title)
		}
		b.WriteString(title + " " + model.theme.Badge.Render(article.Category) + "\n")
		b.WriteString(model.theme.Muted.Render(truncate(strings.Join(strings.Fields(article.Content), " "), previewLength)) + "\n")
		meta := "Created " + article.CreatedAt.Local().Format(timeLayout)
		if len(article.Tags) > 0 {
			meta = "#" + strings.Join(article.Tags, " #") + " · " + meta
		}
		b.WriteString(model.theme.Muted.Render(meta) + "\n\n")
	}
	return b.String()
}

func (model Model) renderArticleForm() string {
	f := model.knowledge.form
	label := func(i int, text string) string {
		if f.focus == i {
			return model.theme.Selected.Render(text)
		}
		return model.theme.Title.Render(text)
	}

	var b strings.Builder
	b.WriteString(model.theme.Title.Render("Create Knowledge Base Article") + "\n\n")
	b.WriteString(label(fieldTitle, "Title") + "\n" + f.title.View() + "\n\n")
	b.WriteString(label(fieldCategory, "Category") + "\n" + f.category.View() + "\n\n")
	b.WriteString(label(fieldTags, "Tags") + "\n" + f.tags.View() + "\n\n")
	b.WriteString(label(fieldContent, "Content") + "\n" + f.content.View() + "\n\n")

	draft := f.draft()
	switch {
	case model.knowledge.creating:
		b.WriteString(model.theme.Muted.Render("Creating..."))
	case draft.Ready():
		b.WriteString("C-s create article")
	default:
		b.WriteString(model.theme.Muted.Render(fmt.Sprintf("C-s create article (missing %s)", strings.Join(draft.Missing(), ", "))))
	}
	return b.String()
}
