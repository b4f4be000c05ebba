package schema

import (
	"fmt"
	"strings"

	"ngjit-go/packages/compiler/src/metadata"
)

// schemaSource lists element definitions as "tag,tag^parent|prop,prop". The pseudo tag
// [Element] is the root every known element inherits from, [HTMLElement] adds the common HTML
// properties, and "unknown" is used for tags with no entry.
var schemaSource = []string{
	"[Element]|id,className,classList,innerHTML,outerHTML,textContent,scrollLeft,scrollTop,slot",
	"[HTMLElement]^[Element]|accessKey,contentEditable,dir,draggable,hidden,innerText,lang,spellcheck,style,tabIndex,title,translate",
	"abbr,address,article,aside,b,bdi,bdo,cite,code,dd,dfn,dt,em,figcaption,figure,footer,header,hgroup,i,kbd,main,mark,nav,noscript,rb,rp,rt,rtc,ruby,s,samp,section,small,strong,sub,summary,sup,u,var,wbr,unknown,div,span,p,h1,h2,h3,h4,h5,h6,ul,dl,pre,br,hr,legend,caption,thead,tbody,tfoot,tr,colgroup,col,html,head,body,title,template,slot,picture,fieldset,optgroup^[HTMLElement]|",
	"a^[HTMLElement]|download,href,hreflang,name,ping,referrerPolicy,rel,target,text,type",
	"area^[HTMLElement]|alt,coords,download,href,ping,rel,shape,target",
	"audio^media|",
	"video^media|height,poster,width",
	"media^[HTMLElement]|autoplay,controls,crossOrigin,currentTime,defaultMuted,loop,muted,playbackRate,preload,src,volume",
	"blockquote,q,del,ins^[HTMLElement]|cite,dateTime",
	"button^[HTMLElement]|autofocus,disabled,formAction,formEnctype,formMethod,formNoValidate,formTarget,name,type,value",
	"canvas^[HTMLElement]|height,width",
	"data^[HTMLElement]|value",
	"details,dialog^[HTMLElement]|open",
	"embed^[HTMLElement]|height,src,type,width",
	"form^[HTMLElement]|acceptCharset,action,autocomplete,encoding,enctype,method,name,noValidate,target",
	"iframe^[HTMLElement]|allow,allowFullscreen,height,name,referrerPolicy,sandbox,src,srcdoc,width",
	"img^[HTMLElement]|alt,crossOrigin,decoding,height,isMap,loading,referrerPolicy,sizes,src,srcset,useMap,width",
	"input^[HTMLElement]|accept,alt,autocomplete,autofocus,checked,defaultChecked,defaultValue,dirName,disabled,files,formAction,height,indeterminate,max,maxLength,min,minLength,multiple,name,pattern,placeholder,readOnly,required,selectionDirection,selectionEnd,selectionStart,size,src,step,type,value,valueAsDate,valueAsNumber,width",
	"label^[HTMLElement]|htmlFor",
	"li^[HTMLElement]|value",
	"link^[HTMLElement]|as,crossOrigin,disabled,href,hreflang,integrity,media,rel,sizes,type",
	"meta^[HTMLElement]|content,httpEquiv,name",
	"meter^[HTMLElement]|high,low,max,min,optimum,value",
	"object^[HTMLElement]|data,height,name,type,useMap,width",
	"ol^[HTMLElement]|reversed,start,type",
	"option^[HTMLElement]|defaultSelected,disabled,label,selected,text,value",
	"output^[HTMLElement]|defaultValue,htmlFor,name,value",
	"param^[HTMLElement]|name,value",
	"progress^[HTMLElement]|max,value",
	"script^[HTMLElement]|async,crossOrigin,defer,src,text,type",
	"select^[HTMLElement]|autocomplete,autofocus,disabled,length,multiple,name,required,selectedIndex,size,value",
	"source^[HTMLElement]|media,sizes,src,srcset,type",
	"style^[HTMLElement]|disabled,media,type",
	"table^[HTMLElement]|border,summary,width",
	"td,th^[HTMLElement]|abbr,colSpan,headers,rowSpan,scope",
	"textarea^[HTMLElement]|autocomplete,autofocus,cols,defaultValue,dirName,disabled,maxLength,minLength,name,placeholder,readOnly,required,rows,selectionDirection,selectionEnd,selectionStart,value,wrap",
	"time^[HTMLElement]|dateTime",
	"track^[HTMLElement]|default,kind,label,src,srclang",
	":svg:svg,:svg:g,:svg:path,:svg:circle,:svg:rect,:svg:line,:svg:text^[Element]|",
}

var attrToPropMap = map[string]string{
	"class":      "className",
	"for":        "htmlFor",
	"formaction": "formAction",
	"innerHtml":  "innerHTML",
	"readonly":   "readOnly",
	"tabindex":   "tabIndex",
}

// DomElementSchemaRegistry answers element and property questions from a built-in table of
// the DOM's element interfaces.
type DomElementSchemaRegistry struct {
	schema map[string]map[string]bool
}

// NewDomElementSchemaRegistry builds the registry
func NewDomElementSchemaRegistry() *DomElementSchemaRegistry {
	r := &DomElementSchemaRegistry{schema: map[string]map[string]bool{}}
	pending := map[string]string{}
	props := map[string][]string{}
	for _, line := range schemaSource {
		head, propList, _ := strings.Cut(line, "|")
		tags, parent, _ := strings.Cut(head, "^")
		var ps []string
		if propList != "" {
			ps = strings.Split(propList, ",")
		}
		for _, tag := range strings.Split(tags, ",") {
			tag = strings.TrimPrefix(tag, ":svg:")
			pending[tag] = parent
			props[tag] = ps
		}
	}
	var resolve func(tag string) map[string]bool
	resolve = func(tag string) map[string]bool {
		if set, ok := r.schema[tag]; ok {
			return set
		}
		set := map[string]bool{}
		if parent := pending[tag]; parent != "" {
			for p := range resolve(parent) {
				set[p] = true
			}
		}
		for _, p := range props[tag] {
			set[p] = true
		}
		r.schema[tag] = set
		return set
	}
	for tag := range pending {
		resolve(tag)
	}
	return r
}

func hasSchema(schemas []metadata.Schema, s metadata.Schema) bool {
	for _, x := range schemas {
		if x == s {
			return true
		}
	}
	return false
}

// HasElement reports whether tagName is a known element. Dash-cased names are custom elements
// and are only known under CUSTOM_ELEMENTS_SCHEMA.
func (r *DomElementSchemaRegistry) HasElement(tagName string, schemas []metadata.Schema) bool {
	if hasSchema(schemas, metadata.NoErrorsSchema) {
		return true
	}
	if strings.Contains(tagName, "-") {
		if tagName == "ng-container" || tagName == "ng-content" || tagName == "ng-template" {
			return true
		}
		return hasSchema(schemas, metadata.CustomElementsSchema)
	}
	_, ok := r.schema[strings.ToLower(tagName)]
	return ok
}

// HasProperty reports whether propName is a DOM property of tagName.
func (r *DomElementSchemaRegistry) HasProperty(tagName string, propName string, schemas []metadata.Schema) bool {
	if hasSchema(schemas, metadata.NoErrorsSchema) {
		return true
	}
	if strings.Contains(tagName, "-") {
		if tagName == "ng-container" || tagName == "ng-content" {
			return false
		}
		if hasSchema(schemas, metadata.CustomElementsSchema) {
			return true
		}
	}
	props, ok := r.schema[strings.ToLower(tagName)]
	if !ok {
		props = r.schema["unknown"]
	}
	return props[propName]
}

// GetMappedPropName maps attribute-style names such as "class" to DOM property names.
func (r *DomElementSchemaRegistry) GetMappedPropName(propName string) string {
	if mapped, ok := attrToPropMap[propName]; ok {
		return mapped
	}
	return propName
}

// GetDefaultComponentElementName returns the default component element name
func (r *DomElementSchemaRegistry) GetDefaultComponentElementName() string {
	return "ng-component"
}

// ValidateProperty rejects bindings to on* properties.
func (r *DomElementSchemaRegistry) ValidateProperty(name string) PropertyValidationResult {
	if strings.HasPrefix(strings.ToLower(name), "on") {
		return PropertyValidationResult{Error: true, Msg: fmt.Sprintf(
			"Binding to event property '%s' is disallowed for security reasons, please use (%s)=...\n"+
				"If '%s' is a directive input, make sure the directive is imported by the current module.",
			name, name[2:], name)}
	}
	return PropertyValidationResult{}
}

// ValidateAttribute rejects bindings to on* attributes.
func (r *DomElementSchemaRegistry) ValidateAttribute(name string) PropertyValidationResult {
	if strings.HasPrefix(strings.ToLower(name), "on") {
		return PropertyValidationResult{Error: true, Msg: fmt.Sprintf(
			"Binding to event attribute '%s' is disallowed for security reasons, please use (%s)=...",
			name, name[2:])}
	}
	return PropertyValidationResult{}
}

// AllKnownElementNames returns the names of all elements in the table.
func (r *DomElementSchemaRegistry) AllKnownElementNames() []string {
	names := make([]string, 0, len(r.schema))
	for tag := range r.schema {
		if !strings.HasPrefix(tag, "[") && tag != "media" && tag != "unknown" {
			names = append(names, tag)
		}
	}
	return names
}
