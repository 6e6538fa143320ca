package area

// Markers maps marker class name to marker content.
type Markers map[string]*Area

// markerSlots keeps markers registered on a page for later retrieval.
type markerSlots struct {
	firstStarting Markers
	firstAny      Markers
	lastStarting  Markers
	lastEnding    Markers
	lastAny       Markers
}

func putFirst(dst *Markers, marks Markers) {
	if *dst == nil {
		*dst = make(Markers, len(marks))
	}
	for class, m := range marks {
		if _, exists := (*dst)[class]; !exists {
			(*dst)[class] = m
		}
	}
}

func putLast(dst *Markers, marks Markers) {
	if *dst == nil {
		*dst = make(Markers, len(marks))
	}
	for class, m := range marks {
		(*dst)[class] = m
	}
}

func (s *markerSlots) add(marks Markers, starting, isFirst bool) {
	if len(marks) == 0 {
		return
	}
	switch {
	case starting && isFirst:
		putFirst(&s.firstStarting, marks)
		putFirst(&s.firstAny, marks)
		putLast(&s.lastStarting, marks)
	case starting:
		putFirst(&s.firstAny, marks)
	default:
		if !isFirst {
			putLast(&s.lastEnding, marks)
		}
		putLast(&s.lastAny, marks)
	}
}

func (s *markerSlots) get(class string, pos RetrievePosition) (*Area, bool) {
	var primary, fallback Markers
	switch pos {
	case RetrievePositionFirstStarting:
		primary, fallback = s.firstStarting, s.firstAny
	case RetrievePositionFirstIncludingCarryover:
		primary, fallback = s.firstAny, nil
	case RetrievePositionLastStarting:
		primary, fallback = s.lastStarting, s.lastAny
	case RetrievePositionLastEnding:
		primary, fallback = s.lastEnding, s.lastAny
	default:
		return nil, false
	}
	if m, ok := primary[class]; ok {
		return m, true
	}
	m, ok := fallback[class]
	return m, ok
}

func (s markerSlots) clone() markerSlots {
	cp := func(m Markers) Markers {
		if m == nil {
			return nil
		}
		c := make(Markers, len(m))
		for k, v := range m {
			c[k] = v.clone()
		}
		return c
	}
	return markerSlots{
		firstStarting: cp(s.firstStarting),
		firstAny:      cp(s.firstAny),
		lastStarting:  cp(s.lastStarting),
		lastEnding:    cp(s.lastEnding),
		lastAny:       cp(s.lastAny),
	}
}
